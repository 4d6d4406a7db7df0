package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/response"
	"github.com/ejoheza/backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Register()
}

type fakeUsers struct {
	byEmail map[string]*models.User
	roles   map[uuid.UUID]models.Role
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}, roles: map[uuid.UUID]models.Role{}}
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, email, hash, name string, role models.Role) (*models.User, error) {
	u := &models.User{ID: uuid.New(), Email: strings.ToLower(email), Password: hash, FullName: name, CreatedAt: time.Now()}
	f.byEmail[u.Email] = u
	f.roles[u.ID] = role
	return u, nil
}

func (f *fakeUsers) IsAdmin(_ context.Context, id uuid.UUID) bool {
	return f.roles[id] == models.RoleAdmin
}

func setup(t *testing.T) (*gin.Engine, *fakeUsers, *JWTService) {
	t.Helper()
	users := newFakeUsers()
	jwtSvc := NewJWTService("secret", 1)
	revoker := NewRevoker(cache.NewMemoryBackend())
	h := NewHandler(users, jwtSvc, users, revoker, zap.NewNop())

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	withIdentity := func(c *gin.Context) {
		claims, err := jwtSvc.Validate(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if revoked, _ := revoker.IsRevoked(c.Request.Context(), claims.ID); revoked {
			response.Unauthorized(c, "token revoked")
			c.Abort()
			return
		}
		SetIdentity(c, IdentityFromClaims(claims))
	}
	r.GET("/auth/me", withIdentity, h.Me)
	r.POST("/auth/logout", withIdentity, h.Logout)
	return r, users, jwtSvc
}

func do(r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegisterCreatesUserRole(t *testing.T) {
	r, users, _ := setup(t)
	w, body := do(r, http.MethodPost, "/auth/register", "", gin.H{
		"email": "Jane@Example.org", "password": "longenough", "full_name": "Jane",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, false, data["user"].(map[string]interface{})["is_admin"])

	u, err := users.GetByEmail(context.Background(), "jane@example.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, users.roles[u.ID])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _, _ := setup(t)
	payload := gin.H{"email": "jane@example.org", "password": "longenough", "full_name": "Jane"}
	w, _ := do(r, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(r, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _, _ := setup(t)
	w, body := do(r, http.MethodPost, "/auth/register", "", gin.H{"email": "jane@example.org", "password": "longenough", "full_name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "full_name is required", body["error"])
}

func TestLoginAndMe(t *testing.T) {
	r, users, _ := setup(t)
	hash, err := utils.HashPassword("adminpass")
	require.NoError(t, err)
	_, err = users.Create(context.Background(), "admin@ejoheza.org", hash, "Admin", models.RoleAdmin)
	require.NoError(t, err)

	w, body := do(r, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@ejoheza.org", "password": "adminpass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]interface{})
	token := data["token"].(string)
	assert.Equal(t, true, data["user"].(map[string]interface{})["is_admin"])

	w, body = do(r, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@ejoheza.org", body["data"].(map[string]interface{})["email"])
}

func TestLoginWrongPassword(t *testing.T) {
	r, users, _ := setup(t)
	hash, err := utils.HashPassword("adminpass")
	require.NoError(t, err)
	_, _ = users.Create(context.Background(), "admin@ejoheza.org", hash, "Admin", models.RoleAdmin)

	w, body := do(r, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@ejoheza.org", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", body["error"])

	w, _ = do(r, http.MethodPost, "/auth/login", "", gin.H{"email": "ghost@ejoheza.org", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, users, jwtSvc := setup(t)
	u, _ := users.Create(context.Background(), "jane@example.org", "x", "Jane", models.RoleUser)
	token, _, err := jwtSvc.Generate(u.ID, u.Email)
	require.NoError(t, err)

	w, body := do(r, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Signed out", body["notification"].(map[string]interface{})["title"])

	w, _ = do(r, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
