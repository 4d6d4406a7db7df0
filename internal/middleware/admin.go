package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ejoheza/backend/internal/auth"
	"github.com/ejoheza/backend/pkg/response"
)

// AccessDenied is the body error for signed-in users without the admin role.
const AccessDenied = "Access denied. Admin privileges required."

// AdminChecker resolves whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
}

// RequireAdmin allows only identities the checker resolves as admin. It must run after JWT.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !checker.IsAdmin(c.Request.Context(), id.UserID) {
			response.Forbidden(c, AccessDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}
