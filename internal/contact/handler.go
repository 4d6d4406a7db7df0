// Package contact forwards contact form messages to the organisation inbox.
package contact

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/queue"
	"github.com/ejoheza/backend/pkg/response"
)

// Mailer enqueues outgoing email.
type Mailer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// MessageRequest is the body for POST /contact.
type MessageRequest struct {
	Name    string `json:"name" binding:"required,notblank"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,notblank"`
	Message string `json:"message" binding:"required,notblank"`
}

var messageTmpl = template.Must(template.New("contact").Parse(
	`<p>Message from <strong>{{.Name}}</strong> ({{.Email}}):</p>
<p><em>{{.Subject}}</em></p>
<p>{{.Message}}</p>`))

// Handler handles the contact form.
type Handler struct {
	mailer   Mailer
	orgInbox string
	logger   *zap.Logger
}

// NewHandler creates a contact handler.
func NewHandler(mailer Mailer, orgInbox string, logger *zap.Logger) *Handler {
	return &Handler{mailer: mailer, orgInbox: orgInbox, logger: logger}
}

// Send handles POST /contact.
func (h *Handler) Send(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Subject = strings.TrimSpace(req.Subject)

	var body bytes.Buffer
	if err := messageTmpl.Execute(&body, req); err != nil {
		h.logger.Error("render contact email", zap.Error(err))
		response.Internal(c, "Failed to send message")
		return
	}
	payload := queue.EmailPayload{
		Kind:    queue.EmailContact,
		To:      []string{h.orgInbox},
		ReplyTo: req.Email,
		Subject: "Contact form: " + req.Subject,
		HTML:    body.String(),
	}
	if err := h.mailer.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue contact email", zap.Error(err))
		response.Internal(c, "Failed to send message")
		return
	}
	response.OKWithNotice(c, gin.H{"sent": true},
		response.Notice("Message Sent!", "Thank you for reaching out. We'll get back to you soon."))
}
