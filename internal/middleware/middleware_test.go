package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/auth"
	"github.com/ejoheza/backend/internal/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticRevocations struct {
	revoked map[string]bool
	err     error
}

func (s staticRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

type staticAdmins map[uuid.UUID]bool

func (s staticAdmins) IsAdmin(_ context.Context, id uuid.UUID) bool { return s[id] }

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestJWTAndRequireAdmin(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", 1)
	admin, user := uuid.New(), uuid.New()
	adminToken, _, err := jwtSvc.Generate(admin, "admin@ejoheza.org")
	require.NoError(t, err)
	userToken, _, err := jwtSvc.Generate(user, "user@ejoheza.org")
	require.NoError(t, err)

	revocations := staticRevocations{revoked: map[string]bool{}}
	r := gin.New()
	r.GET("/admin", JWT(jwtSvc, revocations), RequireAdmin(staticAdmins{admin: true}), func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		c.String(http.StatusOK, id.Email)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", http.Header{"Authorization": {"Token abc"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", bearer("garbage")).Code)

	w := serve(r, http.MethodGet, "/admin", bearer(userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), AccessDenied)

	w = serve(r, http.MethodGet, "/admin", bearer(adminToken))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@ejoheza.org", w.Body.String())
}

func TestJWTRejectsRevokedAndUnverifiable(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", 1)
	token, _, err := jwtSvc.Generate(uuid.New(), "a@b.org")
	require.NoError(t, err)
	claims, err := jwtSvc.Validate(token)
	require.NoError(t, err)

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r := gin.New()
	r.GET("/revoked", JWT(jwtSvc, staticRevocations{revoked: map[string]bool{claims.ID: true}}), ok)
	r.GET("/broken", JWT(jwtSvc, staticRevocations{err: errors.New("redis down")}), ok)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/revoked", bearer(token)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/broken", bearer(token)).Code)
}

func TestOptionalJWT(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", 1)
	uid := uuid.New()
	token, _, err := jwtSvc.Generate(uid, "a@b.org")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", OptionalJWT(jwtSvc, staticRevocations{}), func(c *gin.Context) {
		if id, ok := auth.IdentityFrom(c); ok {
			c.String(http.StatusOK, id.UserID.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", nil).Body.String())
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", bearer("garbage")).Body.String())
	assert.Equal(t, uid.String(), serve(r, http.MethodGet, "/", bearer(token)).Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://ejoheza.org", "/functions/"))
	r.GET("/news", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/functions/x", func(c *gin.Context) { c.String(http.StatusOK, "") })

	w := serve(r, http.MethodOptions, "/news", http.Header{"Origin": {"https://ejoheza.org"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ejoheza.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/news", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/functions/x", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, http.MethodGet, "/", http.Header{"X-Request-Id": {"abc"}})
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/", nil)
	assert.NotEmpty(t, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/contact", RateLimit(cache.NewMemoryBackend(), "forms", 2, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/contact", nil).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/contact", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/contact", nil).Code)
}

func TestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	assert.Equal(t, http.StatusTeapot, serve(r, http.MethodGet, "/", nil).Code)
}
