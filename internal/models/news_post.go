package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsPost is a news article. Only published posts are visible publicly.
type NewsPost struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	Author      string    `json:"author"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
