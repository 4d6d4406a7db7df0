package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/utils"
)

func (f *fakeUsers) GrantRole(_ context.Context, id uuid.UUID, role models.Role) error {
	f.roles[id] = role
	return nil
}

func TestSeedAdminCreatesMissingAccount(t *testing.T) {
	users := newFakeUsers()
	u, err := SeedAdmin(context.Background(), users, "admin@ejoheza.org", "admin-pass-1", "Admin", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, users.IsAdmin(context.Background(), u.ID))
	assert.True(t, utils.CheckPassword("admin-pass-1", u.Password))
}

func TestSeedAdminPromotesAccountWithSamePassword(t *testing.T) {
	users := newFakeUsers()
	hash, err := utils.HashPassword("admin-pass-1")
	require.NoError(t, err)
	existing, err := users.Create(context.Background(), "admin@ejoheza.org", hash, "Admin", models.RoleUser)
	require.NoError(t, err)

	u, err := SeedAdmin(context.Background(), users, "admin@ejoheza.org", "admin-pass-1", "Admin", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	assert.True(t, users.IsAdmin(context.Background(), existing.ID))
}

func TestSeedAdminRefusesSelfRegisteredAccount(t *testing.T) {
	users := newFakeUsers()
	hash, err := utils.HashPassword("someone-elses")
	require.NoError(t, err)
	squatter, err := users.Create(context.Background(), "admin@ejoheza.org", hash, "Not Admin", models.RoleUser)
	require.NoError(t, err)

	u, err := SeedAdmin(context.Background(), users, "admin@ejoheza.org", "admin-pass-1", "Admin", zap.NewNop())
	assert.ErrorIs(t, err, ErrSeedPasswordMismatch)
	assert.Nil(t, u)
	assert.False(t, users.IsAdmin(context.Background(), squatter.ID))
}
