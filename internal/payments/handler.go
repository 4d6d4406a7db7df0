// Package payments serves the create-paypal-order function: it creates a
// provider order and records a pending donation for it.
package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/paypal"
)

// Path is the route of the function, relative to the engine root.
const Path = "/functions/create-paypal-order"

const allowHeaders = "authorization, x-client-info, apikey, content-type"

// OrderCreator creates provider orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error)
}

// DonationRecorder inserts donation rows.
type DonationRecorder interface {
	Create(ctx context.Context, d *models.Donation) error
}

// DonorInfo identifies the donor.
type DonorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderRequest is the function's request body. Missing fields decode as zero values.
type OrderRequest struct {
	Amount       float64   `json:"amount"`
	DonorInfo    DonorInfo `json:"donorInfo"`
	IsAnonymous  bool      `json:"isAnonymous"`
	Purpose      string    `json:"purpose"`
	DonationType string    `json:"donationType"`
}

// OrderResponse is returned on success. DonationID is omitted when the donation row could not be written.
type OrderResponse struct {
	OrderID     string     `json:"orderId"`
	ApprovalURL string     `json:"approvalUrl,omitempty"`
	DonationID  *uuid.UUID `json:"donationId,omitempty"`
}

// Handler serves the create-paypal-order function.
type Handler struct {
	orders      OrderCreator
	donations   DonationRecorder
	collections *cache.Collections
	siteOrigin  string
	logger      *zap.Logger
}

// NewHandler creates the function handler. collections may be nil.
func NewHandler(orders OrderCreator, donations DonationRecorder, collections *cache.Collections, siteOrigin string, logger *zap.Logger) *Handler {
	return &Handler{
		orders:      orders,
		donations:   donations,
		collections: collections,
		siteOrigin:  strings.TrimRight(siteOrigin, "/"),
		logger:      logger,
	}
}

// Register mounts the function and its preflight route on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.OPTIONS(Path, CORS)
	r.POST(Path, CORS, h.CreateOrder)
}

// CORS sets the function's open CORS headers and answers preflight with an empty 200.
func CORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", allowHeaders)
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

func fail(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// origin is where PayPal sends the donor back; the caller's Origin header wins over the configured site.
func (h *Handler) origin(c *gin.Context) string {
	if o := strings.TrimRight(c.GetHeader("Origin"), "/"); o != "" {
		return o
	}
	return h.siteOrigin
}

// CreateOrder handles POST /functions/create-paypal-order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		h.logger.Error("paypal order body", zap.Error(err))
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	origin := h.origin(c)

	order, err := h.orders.CreateOrder(ctx, paypal.OrderRequest{
		Amount:      req.Amount,
		Description: req.Purpose,
		ReturnURL:   origin + "/donation-success",
		CancelURL:   origin + "/donate",
	})
	if err != nil {
		h.logger.Error("create paypal order", zap.Error(err))
		fail(c, err)
		return
	}

	resp := OrderResponse{OrderID: order.ID, ApprovalURL: order.ApprovalURL()}
	d := &models.Donation{
		DonorName:       models.DonorDisplayName(req.DonorInfo.Name, req.IsAnonymous),
		Email:           req.DonorInfo.Email,
		Phone:           req.DonorInfo.Phone,
		Amount:          req.Amount,
		DonationType:    models.DonationType(req.DonationType),
		Purpose:         req.Purpose,
		IsAnonymous:     req.IsAnonymous,
		Status:          models.DonationPending,
		ProviderOrderID: order.ID,
	}
	if err := h.donations.Create(ctx, d); err != nil {
		// The order already exists at PayPal; the row is only tracking.
		h.logger.Error("record donation for paypal order", zap.Error(err), zap.String("order_id", order.ID))
	} else {
		resp.DonationID = &d.ID
		if h.collections != nil {
			h.collections.Invalidate(ctx, cache.KeyDonations)
		}
	}
	c.JSON(http.StatusOK, resp)
}
