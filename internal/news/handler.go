package news

import (
	"context"
	"errors"
	"strings"

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

// Filter values for the published flag.
const (
	FilterPublished = "published"
	FilterDraft     = "draft"
)

// Store is the news persistence the handler needs.
type Store interface {
	Create(ctx context.Context, p *models.NewsPost) error
	Update(ctx context.Context, p *models.NewsPost) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*models.NewsPost, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.NewsPost, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*models.NewsPost, error)
	List(ctx context.Context) ([]models.NewsPost, error)
	ListPublished(ctx context.Context, limit int) ([]models.NewsPost, error)
}

// PostRequest is the create/replace body.
type PostRequest struct {
	Title     string `json:"title" binding:"required,notblank"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Published bool   `json:"published"`
}

// PublishRequest is the body for PATCH /admin/news/:id/publish.
type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// Stats counts posts by published flag.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}

// ListResponse is the admin list payload.
type ListResponse struct {
	Items []models.NewsPost `json:"items"`
	Stats Stats             `json:"stats"`
}

// Handler handles news HTTP endpoints.
type Handler struct {
	store       Store
	collections *cache.Collections
	logger      *zap.Logger
}

// NewHandler creates a news handler.
func NewHandler(store Store, collections *cache.Collections, logger *zap.Logger) *Handler {
	return &Handler{store: store, collections: collections, logger: logger}
}

// FilterValue maps the published flag onto the list view's filter vocabulary.
func FilterValue(p models.NewsPost) string {
	if p.Published {
		return FilterPublished
	}
	return FilterDraft
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) render(p *models.NewsPost) {
	out, err := RenderHTML(p.Content)
	if err != nil {
		h.logger.Warn("render news content", zap.Error(err), zap.String("post_id", p.ID.String()))
		return
	}
	p.ContentHTML = out
}

// ListPublic handles GET /news: published posts, newest first.
func (h *Handler) ListPublic(c *gin.Context) {
	list, err := h.store.ListPublished(c.Request.Context(), 0)
	if err != nil {
		h.logger.Error("list published news", zap.Error(err))
		response.Internal(c, "failed to load news")
		return
	}
	for i := range list {
		h.render(&list[i])
	}
	response.OK(c, list)
}

// GetPublic handles GET /news/:id. Drafts are reported as not found.
func (h *Handler) GetPublic(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.store.GetPublished(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get published news", "failed to load post")
		return
	}
	h.render(p)
	response.OK(c, p)
}

// List handles GET /admin/news?search=&status=all|published|draft.
func (h *Handler) List(c *gin.Context) {
	all, err := cache.Load(c.Request.Context(), h.collections, cache.KeyNewsPosts, h.store.List)
	if err != nil {
		h.logger.Error("list news", zap.Error(err))
		response.Internal(c, "failed to load news")
		return
	}
	items := listing.Filter(all, listing.ParseParams(c.Request.URL.Query()),
		func(p models.NewsPost) []string { return []string{p.Title, p.Content, p.Author} },
		FilterValue,
	)
	s := Stats{Total: len(all)}
	for _, p := range all {
		if p.Published {
			s.Published++
		} else {
			s.Drafts++
		}
	}
	response.OK(c, ListResponse{Items: items, Stats: s})
}

// GetByID handles GET /admin/news/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get news", "failed to load post")
		return
	}
	response.OK(c, p)
}

func bind(c *gin.Context) (*models.NewsPost, bool) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return nil, false
	}
	return &models.NewsPost{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Author:    strings.TrimSpace(req.Author),
		Published: req.Published,
	}, true
}

// Create handles POST /admin/news.
func (h *Handler) Create(c *gin.Context) {
	p, ok := bind(c)
	if !ok {
		return
	}
	if err := h.store.Create(c.Request.Context(), p); err != nil {
		h.fail(c, err, "create news", "Failed to create post")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyNewsPosts)
	response.CreatedWithNotice(c, p, response.Notice("Success", "News post created successfully"))
}

// Update handles PUT /admin/news/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, ok := bind(c)
	if !ok {
		return
	}
	p.ID = id
	if err := h.store.Update(c.Request.Context(), p); err != nil {
		h.fail(c, err, "update news", "Failed to update post")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyNewsPosts)
	response.OKWithNotice(c, p, response.Notice("Success", "News post updated successfully"))
}

// Delete handles DELETE /admin/news/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete news", "Failed to delete post")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyNewsPosts)
	response.OKWithNotice(c, gin.H{"id": id}, response.Notice("Success", "News post deleted successfully"))
}

// SetPublished handles PATCH /admin/news/:id/publish.
func (h *Handler) SetPublished(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	p, err := h.store.SetPublished(c.Request.Context(), id, *req.Published)
	if err != nil {
		h.fail(c, err, "publish news", "Failed to update post")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyNewsPosts)
	desc := "Post unpublished"
	if p.Published {
		desc = "Post published"
	}
	response.OKWithNotice(c, p, response.Notice("Success", desc))
}

func (h *Handler) fail(c *gin.Context, err error, op, msg string) {
	if errors.Is(err, database.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if database.IsCheckViolation(err) {
		response.BadRequest(c, "post violates a field constraint")
		return
	}
	h.logger.Error(op, zap.Error(err), zap.String("post_id", c.Param("id")))
	response.Internal(c, msg)
}
