package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/utils"
)

// ErrSeedPasswordMismatch is returned when the configured admin email belongs
// to an account whose password differs from the configured one.
var ErrSeedPasswordMismatch = errors.New("existing account password does not match configured admin password")

// SeedStore is the user persistence SeedAdmin needs.
type SeedStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.User, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role models.Role) error
}

// SeedAdmin makes sure an account with email exists and holds the admin role.
// An existing account is promoted only when it already uses password, so an
// account someone else registered under that email stays a plain user.
func SeedAdmin(ctx context.Context, repo SeedStore, email, password, fullName string, logger *zap.Logger) (*models.User, error) {
	u, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		u, err = repo.Create(ctx, email, hash, fullName, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		logger.Info("admin account created", zap.String("email", u.Email))
		return u, nil
	default:
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if !utils.CheckPassword(password, u.Password) {
		logger.Warn("refusing to promote existing account with a different password", zap.String("email", u.Email))
		return nil, ErrSeedPasswordMismatch
	}
	if err := repo.GrantRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	logger.Info("admin role ensured", zap.String("email", u.Email))
	return u, nil
}
