package volunteers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/auth"
	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/listing"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/queue"
	"github.com/ejoheza/backend/pkg/response"
)

// Store is the volunteer persistence the handler needs.
type Store interface {
	Create(ctx context.Context, v *models.Volunteer) error
	List(ctx context.Context) ([]models.Volunteer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Volunteer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.VolunteerStatus) (*models.Volunteer, error)
}

// Mailer enqueues outgoing email.
type Mailer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// ApplyRequest is the body for POST /volunteers.
type ApplyRequest struct {
	FullName              string   `json:"full_name" binding:"required,notblank"`
	Email                 string   `json:"email" binding:"required,email"`
	Phone                 string   `json:"phone" binding:"required,notblank"`
	DateOfBirth           string   `json:"date_of_birth"`
	Address               string   `json:"address"`
	Skills                []string `json:"skills"`
	Availability          string   `json:"availability" binding:"required,notblank"`
	Motivation            string   `json:"motivation" binding:"required,notblank"`
	Experience            string   `json:"experience"`
	EmergencyContactName  string   `json:"emergency_contact_name"`
	EmergencyContactPhone string   `json:"emergency_contact_phone"`
}

// StatusRequest is the body for PATCH /admin/volunteers/:id/status.
type StatusRequest struct {
	Status models.VolunteerStatus `json:"status" binding:"required"`
}

// Stats counts applications per status.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// ListResponse is the admin list payload.
type ListResponse struct {
	Items []models.Volunteer `json:"items"`
	Stats Stats              `json:"stats"`
}

// Handler handles volunteer HTTP endpoints.
type Handler struct {
	store       Store
	collections *cache.Collections
	mailer      Mailer
	orgInbox    string
	logger      *zap.Logger
}

// NewHandler creates a volunteer handler. mailer may be nil when no queue is configured.
func NewHandler(store Store, collections *cache.Collections, mailer Mailer, orgInbox string, logger *zap.Logger) *Handler {
	return &Handler{store: store, collections: collections, mailer: mailer, orgInbox: orgInbox, logger: logger}
}

// Apply handles POST /volunteers (public). The signed-in user, if any, is linked to the application.
func (h *Handler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	v := &models.Volunteer{
		FullName:              strings.TrimSpace(req.FullName),
		Email:                 strings.TrimSpace(req.Email),
		Phone:                 strings.TrimSpace(req.Phone),
		Address:               strings.TrimSpace(req.Address),
		Skills:                normalizeSkills(req.Skills),
		Availability:          strings.TrimSpace(req.Availability),
		Motivation:            strings.TrimSpace(req.Motivation),
		Experience:            strings.TrimSpace(req.Experience),
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
			return
		}
		v.DateOfBirth = &dob
	}
	if id, ok := auth.IdentityFrom(c); ok {
		uid := id.UserID
		v.UserID = &uid
	}

	if err := h.store.Create(c.Request.Context(), v); err != nil {
		h.logger.Error("create volunteer", zap.Error(err))
		response.Internal(c, "Failed to submit application. Please try again.")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyVolunteers)
	h.notify(c.Request.Context(), v)

	response.CreatedWithNotice(c, v, response.Notice(
		"Application Submitted!",
		"Thank you for your interest in volunteering. We'll review your application and contact you soon.",
	))
}

func (h *Handler) notify(ctx context.Context, v *models.Volunteer) {
	if h.mailer == nil {
		return
	}
	for _, p := range applicationEmails(v, h.orgInbox) {
		if err := h.mailer.EnqueueEmail(ctx, p); err != nil {
			h.logger.Warn("enqueue volunteer email", zap.String("kind", p.Kind), zap.Error(err))
		}
	}
}

func (h *Handler) load(ctx context.Context) ([]models.Volunteer, error) {
	return cache.Load(ctx, h.collections, cache.KeyVolunteers, h.store.List)
}

// List handles GET /admin/volunteers?search=&status=.
func (h *Handler) List(c *gin.Context) {
	all, err := h.load(c.Request.Context())
	if err != nil {
		h.logger.Error("list volunteers", zap.Error(err))
		response.Internal(c, "failed to load volunteers")
		return
	}
	items := listing.Filter(all, listing.ParseParams(c.Request.URL.Query()),
		func(v models.Volunteer) []string { return []string{v.FullName, v.Email, v.Phone} },
		func(v models.Volunteer) string { return string(v.Status) },
	)
	response.OK(c, ListResponse{Items: items, Stats: computeStats(all)})
}

// GetByID handles GET /admin/volunteers/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid volunteer id")
		return
	}
	v, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "volunteer not found")
			return
		}
		h.logger.Error("get volunteer", zap.Error(err))
		response.Internal(c, "failed to load volunteer")
		return
	}
	response.OK(c, v)
}

// UpdateStatus handles PATCH /admin/volunteers/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid volunteer id")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	if !req.Status.Valid() {
		response.BadRequest(c, "invalid status")
		return
	}
	v, err := h.store.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "volunteer not found")
			return
		}
		h.logger.Error("update volunteer status", zap.Error(err), zap.String("volunteer_id", id.String()))
		response.Internal(c, "Failed to update volunteer status")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyVolunteers)
	response.OKWithNotice(c, v, response.Notice("Status updated", "Volunteer status changed to "+string(v.Status)+"."))
}

func computeStats(all []models.Volunteer) Stats {
	s := Stats{Total: len(all)}
	for _, v := range all {
		switch v.Status {
		case models.VolunteerPending:
			s.Pending++
		case models.VolunteerApproved:
			s.Approved++
		case models.VolunteerRejected:
			s.Rejected++
		}
	}
	return s
}

func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(s)]; dup {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
	}
	return out
}
