package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Valid reports whether s is an enumerated event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventActive, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Event is an organisation event managed from the dashboard.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	EventDate   *time.Time  `json:"event_date"`
	Location    string      `json:"location"`
	Capacity    *int        `json:"capacity"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Upcoming reports whether the event has a date after now.
func (e *Event) Upcoming(now time.Time) bool {
	return e.EventDate != nil && e.EventDate.After(now)
}
