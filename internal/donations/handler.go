package donations

import (
	"context"
	"errors"
	"math"
	"strconv"
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

// PresetAmounts are the one-click amounts offered by the donation form.
var PresetAmounts = []float64{25, 50, 100, 250, 500, 1000}

// Store is the donation persistence the handler needs.
type Store interface {
	Create(ctx context.Context, d *models.Donation) error
	List(ctx context.Context) ([]models.Donation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus) (*models.Donation, error)
}

// DonateRequest is the body for POST /donations.
type DonateRequest struct {
	DonorName    string              `json:"donor_name"`
	Email        string              `json:"email" binding:"required,email"`
	Phone        string              `json:"phone"`
	Amount       float64             `json:"amount" binding:"gt=0,lt=100000000"`
	DonationType models.DonationType `json:"donation_type"`
	Purpose      string              `json:"purpose"`
	IsAnonymous  bool                `json:"is_anonymous"`
}

// DonateResponse carries the external payment link whether or not the donation row was recorded.
type DonateResponse struct {
	Donation   *models.Donation `json:"donation"`
	Recorded   bool             `json:"recorded"`
	PaymentURL string           `json:"payment_url"`
}

// StatusRequest is the body for PATCH /admin/donations/:id/status.
type StatusRequest struct {
	Status models.DonationStatus `json:"status" binding:"required"`
}

// Stats summarises all recorded donations.
type Stats struct {
	Count          int     `json:"count"`
	TotalAmount    float64 `json:"total_amount"`
	CompletedCount int     `json:"completed_count"`
	PendingCount   int     `json:"pending_count"`
	AverageAmount  float64 `json:"average_amount"`
}

// ListResponse is the admin list payload.
type ListResponse struct {
	Items []models.Donation `json:"items"`
	Stats Stats             `json:"stats"`
}

// Handler handles donation HTTP endpoints.
type Handler struct {
	store       Store
	collections *cache.Collections
	exporter    Exporter
	payMeURL    string
	logger      *zap.Logger
}

// NewHandler creates a donation handler. exporter may be nil, in which case exports are streamed.
func NewHandler(store Store, collections *cache.Collections, exporter Exporter, payMeURL string, logger *zap.Logger) *Handler {
	return &Handler{store: store, collections: collections, exporter: exporter, payMeURL: payMeURL, logger: logger}
}

// PaymentLink returns the paypal.me link for amount, e.g. https://www.paypal.me/org/25.
func PaymentLink(base string, amount float64) string {
	return strings.TrimRight(base, "/") + "/" + strconv.FormatFloat(amount, 'f', -1, 64)
}

// Presets handles GET /donations/presets.
func (h *Handler) Presets(c *gin.Context) {
	response.OK(c, gin.H{
		"amounts":        PresetAmounts,
		"donation_types": []models.DonationType{models.DonationOneTime, models.DonationMonthly, models.DonationYearly},
	})
}

// Donate handles POST /donations (public). The row is a best-effort tracking
// write: the payment link is returned even when the insert fails.
func (h *Handler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	if req.DonationType == "" {
		req.DonationType = models.DonationOneTime
	}
	if !req.DonationType.Valid() {
		response.BadRequest(c, "donation_type must be one of: one-time, monthly, yearly")
		return
	}
	name := strings.TrimSpace(req.DonorName)
	if name == "" && !req.IsAnonymous {
		response.BadRequest(c, "donor_name is required")
		return
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		purpose = models.DefaultPurpose
	}

	amount := math.Round(req.Amount*100) / 100
	if amount <= 0 {
		response.BadRequest(c, "amount must be greater than 0")
		return
	}
	d := &models.Donation{
		DonorName:    models.DonorDisplayName(name, req.IsAnonymous),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Amount:       amount,
		DonationType: req.DonationType,
		Purpose:      purpose,
		IsAnonymous:  req.IsAnonymous,
		Status:       models.DonationPending,
	}
	resp := DonateResponse{PaymentURL: PaymentLink(h.payMeURL, amount)}
	if err := h.store.Create(c.Request.Context(), d); err != nil {
		h.logger.Warn("donation record not saved, continuing to payment", zap.Error(err), zap.Float64("amount", amount))
		response.OKWithNotice(c, resp, response.Notice("Redirecting to PayPal", "Please complete your donation on PayPal."))
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyDonations)
	resp.Donation = d
	resp.Recorded = true
	response.CreatedWithNotice(c, resp, response.Notice("Redirecting to PayPal", "Please complete your donation on PayPal."))
}

func (h *Handler) load(ctx context.Context) ([]models.Donation, error) {
	return cache.Load(ctx, h.collections, cache.KeyDonations, h.store.List)
}

func filter(all []models.Donation, p listing.Params) []models.Donation {
	return listing.Filter(all, p,
		func(d models.Donation) []string { return []string{d.DonorName, d.Email, d.Purpose} },
		func(d models.Donation) string { return string(d.Status) },
	)
}

// List handles GET /admin/donations?search=&status=.
func (h *Handler) List(c *gin.Context) {
	all, err := h.load(c.Request.Context())
	if err != nil {
		h.logger.Error("list donations", zap.Error(err))
		response.Internal(c, "failed to load donations")
		return
	}
	response.OK(c, ListResponse{Items: filter(all, listing.ParseParams(c.Request.URL.Query())), Stats: computeStats(all)})
}

// GetByID handles GET /admin/donations/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid donation id")
		return
	}
	d, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "donation not found")
			return
		}
		h.logger.Error("get donation", zap.Error(err))
		response.Internal(c, "failed to load donation")
		return
	}
	response.OK(c, d)
}

// UpdateStatus handles PATCH /admin/donations/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid donation id")
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
	d, err := h.store.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "donation not found")
			return
		}
		h.logger.Error("update donation status", zap.Error(err), zap.String("donation_id", id.String()))
		response.Internal(c, "Failed to update donation status")
		return
	}
	h.collections.Invalidate(c.Request.Context(), cache.KeyDonations)
	response.OKWithNotice(c, d, response.Notice("Success", "Donation status updated successfully"))
}

func computeStats(all []models.Donation) Stats {
	s := Stats{Count: len(all)}
	for _, d := range all {
		s.TotalAmount += d.Amount
		switch d.Status {
		case models.DonationCompleted:
			s.CompletedCount++
		case models.DonationPending:
			s.PendingCount++
		}
	}
	s.TotalAmount = math.Round(s.TotalAmount*100) / 100
	if s.Count > 0 {
		s.AverageAmount = math.Round(s.TotalAmount/float64(s.Count)*100) / 100
	}
	return s
}
