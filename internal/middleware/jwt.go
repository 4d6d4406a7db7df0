package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ejoheza/backend/internal/auth"
	"github.com/ejoheza/backend/pkg/response"
)

// RevocationList reports whether a token id was signed out.
type RevocationList interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWT returns a middleware that validates the bearer token and stores the
// request's auth.Identity in the context.
func JWT(jwtService *auth.JWTService, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			response.Unauthorized(c, "session could not be verified")
			c.Abort()
			return
		}
		if isRevoked {
			response.Unauthorized(c, "token has been revoked")
			c.Abort()
			return
		}
		auth.SetIdentity(c, auth.IdentityFromClaims(claims))
		c.Next()
	}
}

// OptionalJWT attaches the identity when a valid, unrevoked bearer token is
// present and otherwise lets the request through anonymously.
func OptionalJWT(jwtService *auth.JWTService, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwtService.Validate(token); err == nil {
				if isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID); err == nil && !isRevoked {
					auth.SetIdentity(c, auth.IdentityFromClaims(claims))
				}
			}
		}
		c.Next()
	}
}
