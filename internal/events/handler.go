package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/listing"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/response"
)

// Store is the event persistence the handler needs.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) (*models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	ListActive(ctx context.Context, limit int) ([]models.Event, error)
}

// EventRequest is the create/replace body. event_date accepts RFC 3339, a
// datetime-local value (2006-01-02T15:04) or a plain date.
type EventRequest struct {
	Title       string             `json:"title" binding:"required,notblank"`
	Description string             `json:"description"`
	EventDate   string             `json:"event_date"`
	Location    string             `json:"location"`
	Capacity    *int               `json:"capacity" binding:"omitempty,gt=0"`
	Status      models.EventStatus `json:"status"`
}

// StatusRequest is the body for PATCH /admin/events/:id/status.
type StatusRequest struct {
	Status models.EventStatus `json:"status" binding:"required"`
}

// Stats summarises the event collection.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Upcoming int `json:"upcoming"`
}

// ListResponse is the admin list payload.
type ListResponse struct {
	Items []models.Event `json:"items"`
	Stats Stats          `json:"stats"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store       Store
	collections *cache.Collections
	now         func() time.Time
	logger      *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(store Store, collections *cache.Collections, logger *zap.Logger) *Handler {
	return &Handler{store: store, collections: collections, now: time.Now, logger: logger}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}

// ParseEventDate parses an event date. An empty string yields nil.
func ParseEventDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("event_date must be a date or date-time")
}

func (req *EventRequest) toModel() (*models.Event, error) {
	date, err := ParseEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.EventActive
	}
	if !status.Valid() {
		return nil, errors.New("status must be one of: active, cancelled, completed")
	}
	return &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		EventDate:   date,
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		Status:      status,
	}, nil
}

func (h *Handler) bind(c *gin.Context) (*models.Event, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return nil, false
	}
	e, err := req.toModel()
	if err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}
	return e, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

// ListPublic handles GET /events: active events, soonest first.
func (h *Handler) ListPublic(c *gin.Context) {
	list, err := h.store.ListActive(c.Request.Context(), 0)
	if err != nil {
		h.logger.Error("list public events", zap.Error(err))
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// List handles GET /admin/events?search=&status=.
func (h *Handler) List(c *gin.Context) {
	all, err := cache.Load(c.Request.Context(), h.collections, cache.KeyEvents, h.store.List)
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to load events")
		return
	}
	items := listing.Filter(all, listing.ParseParams(c.Request.URL.Query()),
		func(e models.Event) []string { return []string{e.Title, e.Description, e.Location} },
		func(e models.Event) string { return string(e.Status) },
	)
	response.OK(c, ListResponse{Items: items, Stats: computeStats(all, h.now())})
}

// GetByID handles GET /admin/events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get event", "failed to load event")
		return
	}
	response.OK(c, e)
}

// Create handles POST /admin/events.
func (h *Handler) Create(c *gin.Context) {
	e, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.store.Create(c.Request.Context(), e); err != nil {
		h.fail(c, err, "create event", "Failed to create event")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyEvents)
	response.CreatedWithNotice(c, e, response.Notice("Success", "Event created successfully"))
}

// Update handles PUT /admin/events/:id, replacing every editable field.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, ok := h.bind(c)
	if !ok {
		return
	}
	e.ID = id
	if err := h.store.Update(c.Request.Context(), e); err != nil {
		h.fail(c, err, "update event", "Failed to update event")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyEvents)
	response.OKWithNotice(c, e, response.Notice("Success", "Event updated successfully"))
}

// Delete handles DELETE /admin/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete event", "Failed to delete event")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyEvents)
	response.OKWithNotice(c, gin.H{"id": id}, response.Notice("Success", "Event deleted successfully"))
}

// UpdateStatus handles PATCH /admin/events/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
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
	e, err := h.store.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err, "update event status", "Failed to update event status")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyEvents)
	response.OKWithNotice(c, e, response.Notice("Success", "Event status updated successfully"))
}

func (h *Handler) fail(c *gin.Context, err error, op, msg string) {
	if errors.Is(err, database.ErrNotFound) {
		response.NotFound(c, "event not found")
		return
	}
	if database.IsCheckViolation(err) {
		response.BadRequest(c, "event violates a field constraint")
		return
	}
	h.logger.Error(op, zap.Error(err), zap.String("event_id", c.Param("id")))
	response.Internal(c, msg)
}

func computeStats(all []models.Event, now time.Time) Stats {
	s := Stats{Total: len(all)}
	for i := range all {
		if all[i].Status == models.EventActive {
			s.Active++
		}
		if all[i].Upcoming(now) {
			s.Upcoming++
		}
	}
	return s
}
