// Package site serves the public home and about pages.
package site

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/response"
)

// HomeLimit is how many posts and events the home page shows.
const HomeLimit = 3

// NewsSource lists published posts, newest first.
type NewsSource interface {
	ListPublished(ctx context.Context, limit int) ([]models.NewsPost, error)
}

// EventSource lists active events, soonest first.
type EventSource interface {
	ListActive(ctx context.Context, limit int) ([]models.Event, error)
}

// Home is the GET /home payload.
type Home struct {
	Mission  string            `json:"mission"`
	Impact   []Stat            `json:"impact"`
	Programs []Program         `json:"programs"`
	News     []models.NewsPost `json:"latest_news"`
	Events   []models.Event    `json:"upcoming_events"`
}

// Handler serves the public pages.
type Handler struct {
	news   NewsSource
	events EventSource
	logger *zap.Logger
}

// NewHandler creates a site handler.
func NewHandler(news NewsSource, events EventSource, logger *zap.Logger) *Handler {
	return &Handler{news: news, events: events, logger: logger}
}

// Home handles GET /home. A failed section is returned empty so the rest of the page still renders.
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	home := Home{Mission: mission, Impact: impactStats, Programs: programs,
		News: []models.NewsPost{}, Events: []models.Event{}}

	if posts, err := h.news.ListPublished(ctx, HomeLimit); err != nil {
		h.logger.Warn("home latest news", zap.Error(err))
	} else {
		home.News = posts
	}
	if events, err := h.events.ListActive(ctx, HomeLimit); err != nil {
		h.logger.Warn("home upcoming events", zap.Error(err))
	} else {
		home.Events = events
	}
	response.OK(c, home)
}

// About handles GET /about.
func (h *Handler) About(c *gin.Context) {
	response.OK(c, about)
}
