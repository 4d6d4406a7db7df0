// Package authz answers "is this user an admin", caching the answer per user.
package authz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
)

const keyPrefix = "admin-check:"

// RoleStore answers role membership from storage.
type RoleStore interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Repository calls the is_admin SQL function.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a role repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// IsAdmin calls is_admin(user_id).
func (r *Repository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT is_admin($1)`, userID).Scan(&ok)
	return ok, err
}

// Checker caches IsAdmin answers for ttl under admin-check:<user id>.
type Checker struct {
	store   RoleStore
	backend cache.Backend
	ttl     time.Duration
	logger  *zap.Logger
}

// NewChecker creates a cached admin checker.
func NewChecker(store RoleStore, backend cache.Backend, ttl time.Duration, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{store: store, backend: backend, ttl: ttl, logger: logger}
}

// IsAdmin reports whether userID holds the admin role. Storage errors resolve
// to false and are not cached.
func (c *Checker) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	key := keyPrefix + userID.String()
	if v, err := c.backend.Get(ctx, key); err == nil {
		return string(v) == "1"
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("admin check cache read failed", zap.Error(err))
	}

	ok, err := c.store.IsAdmin(ctx, userID)
	if err != nil {
		c.logger.Error("admin check failed", zap.String("user_id", userID.String()), zap.Error(err))
		return false
	}
	val := []byte("0")
	if ok {
		val = []byte("1")
	}
	if err := c.backend.Set(ctx, key, val, c.ttl); err != nil {
		c.logger.Warn("admin check cache write failed", zap.Error(err))
	}
	return ok
}

// Forget drops the cached answer for userID, e.g. after a role change.
func (c *Checker) Forget(ctx context.Context, userID uuid.UUID) {
	if err := c.backend.Delete(ctx, keyPrefix+userID.String()); err != nil {
		c.logger.Warn("admin check cache delete failed", zap.Error(err))
	}
}
