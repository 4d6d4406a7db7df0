package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextIdentity is the gin context key holding the request's *Identity.
const ContextIdentity = "identity"

// Identity is the signed-in user of one request. It is built from a validated
// token by middleware and passed explicitly through the gin context.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// IdentityFromClaims builds an Identity from validated claims.
func IdentityFromClaims(c *Claims) *Identity {
	id := &Identity{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// SetIdentity stores id on the request context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(ContextIdentity, id)
}

// IdentityFrom returns the request's identity, if any.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}
