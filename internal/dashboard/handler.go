// Package dashboard serves the admin overview.
package dashboard

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/response"
)

// RecentLimit is how many of the newest volunteer applications the overview lists.
const RecentLimit = 5

// Counts are the overview totals.
type Counts struct {
	Volunteers        int     `json:"volunteers"`
	PendingVolunteers int     `json:"pending_volunteers"`
	Donations         int     `json:"donations"`
	TotalDonated      float64 `json:"total_donated"`
	Events            int     `json:"events"`
	NewsPosts         int     `json:"news_posts"`
}

// RecentVolunteer is a compact volunteer row for the overview.
type RecentVolunteer struct {
	ID        uuid.UUID              `json:"id"`
	FullName  string                 `json:"full_name"`
	Email     string                 `json:"email"`
	Status    models.VolunteerStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// Overview is the GET /admin/dashboard payload.
type Overview struct {
	Counts
	RecentVolunteers []RecentVolunteer `json:"recent_volunteers"`
}

// Store reads the overview data.
type Store interface {
	Counts(ctx context.Context) (*Counts, error)
	RecentVolunteers(ctx context.Context, limit int) ([]RecentVolunteer, error)
}

// Handler serves the dashboard.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Overview handles GET /admin/dashboard.
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := h.store.Counts(ctx)
	if err != nil {
		h.logger.Error("dashboard counts", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}
	recent, err := h.store.RecentVolunteers(ctx, RecentLimit)
	if err != nil {
		h.logger.Error("dashboard recent volunteers", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}
	response.OK(c, Overview{Counts: *counts, RecentVolunteers: recent})
}
