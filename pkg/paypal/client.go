// Package paypal creates checkout orders against the PayPal REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrMissingCredentials = errors.New("PayPal credentials not configured")
	ErrNoAccessToken      = errors.New("Failed to get PayPal access token")
	ErrNoOrderID          = errors.New("Failed to create PayPal order")
)

// Config holds the REST credentials and order presentation settings.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Currency     string
	BrandName    string
}

// OrderRequest describes the single purchase unit of a donation order.
type OrderRequest struct {
	Amount      float64
	Description string
	ReturnURL   string
	CancelURL   string
}

// Link is a HATEOAS link returned with an order.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Order is the subset of the created order the handler needs.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

// ApprovalURL returns the href of the first link with rel "approve", or "".
func (o *Order) ApprovalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description"`
}

type applicationContext struct {
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
	BrandName   string `json:"brand_name"`
	LandingPage string `json:"landing_page"`
	UserAction  string `json:"user_action"`
}

type createOrderBody struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

// Client talks to PayPal. Every CreateOrder call fetches its own access token.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a PayPal client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// FormatAmount renders an amount with exactly two decimals, as PayPal expects.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// AccessToken exchanges the client credentials for a bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", ErrMissingCredentials
	}
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.BaseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		c.logger.Error("paypal token exchange failed", zap.Error(err))
		return "", ErrNoAccessToken
	}
	if tok.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return tok.AccessToken, nil
}

// CreateOrder obtains a token and creates a CAPTURE order for one purchase unit.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Donation"
	}
	body := createOrderBody{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount:      amount{CurrencyCode: c.cfg.Currency, Value: FormatAmount(req.Amount)},
			Description: description,
		}},
		ApplicationContext: applicationContext{
			ReturnURL:   req.ReturnURL,
			CancelURL:   req.CancelURL,
			BrandName:   c.cfg.BrandName,
			LandingPage: "BILLING",
			UserAction:  "PAY_NOW",
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/checkout/orders", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		c.logger.Error("paypal order response unreadable", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, ErrNoOrderID
	}
	if order.ID == "" {
		c.logger.Error("paypal order has no id", zap.Int("status", resp.StatusCode))
		return nil, ErrNoOrderID
	}
	c.logger.Info("paypal order created", zap.String("order_id", order.ID), zap.String("status", order.Status))
	return &order, nil
}
