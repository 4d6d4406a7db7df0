package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/response"
	"github.com/ejoheza/backend/pkg/utils"
)

// UserStore is the user persistence the handler needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.User, error)
}

// AdminChecker resolves whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
}

// TokenRevoker revokes a token id until its expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,notblank"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users   UserStore
	jwt     *JWTService
	admins  AdminChecker
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(users UserStore, jwt *JWTService, admins AdminChecker, revoker TokenRevoker, logger *zap.Logger) *Handler {
	return &Handler{users: users, jwt: jwt, admins: admins, revoker: revoker, logger: logger}
}

// Register handles POST /auth/register. New accounts get the user role only.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	if _, err := h.users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("lookup user", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, hash, req.FullName, models.RoleUser)
	if err != nil {
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, expires, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.CreatedWithNotice(c,
		TokenResponse{Token: token, ExpiresAt: expires, User: user.ToPublic(false)},
		response.Notice("Account created", "Welcome! You are now signed in."))
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.logger.Error("lookup user", zap.Error(err))
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, expires, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	isAdmin := h.admins.IsAdmin(c.Request.Context(), user.ID)
	response.OK(c, TokenResponse{Token: token, ExpiresAt: expires, User: user.ToPublic(isAdmin)})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Unauthorized(c, "account no longer exists")
			return
		}
		h.logger.Error("load user", zap.Error(err), zap.String("user_id", id.UserID.String()))
		response.Internal(c, "failed to load account")
		return
	}
	response.OK(c, user.ToPublic(h.admins.IsAdmin(c.Request.Context(), user.ID)))
}

// Logout handles POST /auth/logout. The presented token stops working immediately.
func (h *Handler) Logout(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), id.TokenID, id.ExpiresAt); err != nil {
		h.logger.Error("revoke token", zap.Error(err))
		response.Internal(c, "failed to sign out")
		return
	}
	response.OKWithNotice(c, gin.H{"signed_out": true}, response.Notice("Signed out", "You have been signed out."))
}
