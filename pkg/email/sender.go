// Package email delivers transactional messages through an external provider.
package email

import (
	"context"
	"time"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // defaults to the sender's configured address
	Subject string
	HTML    string
	ReplyTo string
}

// Result is the provider's acknowledgement.
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender sends emails.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}
