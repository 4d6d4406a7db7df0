package email

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NoopSender logs messages instead of sending them. Used when RESEND_API_KEY is unset.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a logging-only sender.
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and reports success.
func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	if len(msg.To) == 0 {
		return Result{}, ErrNoRecipients
	}
	s.logger.Info("email not sent (noop sender)", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return Result{MessageID: "noop", SentAt: time.Now()}, nil
}
