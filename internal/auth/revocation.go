package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ejoheza/backend/internal/cache"
)

const revokedPrefix = "revoked:"

// Revoker remembers signed-out token ids until the tokens expire.
type Revoker struct {
	backend cache.Backend
	now     func() time.Time
}

// NewRevoker creates a revoker over backend.
func NewRevoker(backend cache.Backend) *Revoker {
	return &Revoker{backend: backend, now: time.Now}
}

// Revoke marks tokenID revoked until expiresAt. Already-expired tokens are ignored.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.backend.Set(ctx, revokedPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked reports whether tokenID has been revoked.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.backend.Get(ctx, revokedPrefix+tokenID)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
