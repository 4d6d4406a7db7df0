package models

import (
	"time"

	"github.com/google/uuid"
)

// VolunteerStatus is the review state of a volunteer application.
type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "pending"
	VolunteerApproved VolunteerStatus = "approved"
	VolunteerRejected VolunteerStatus = "rejected"
)

// VolunteerStatuses lists every status in display order.
var VolunteerStatuses = []VolunteerStatus{VolunteerPending, VolunteerApproved, VolunteerRejected}

// Valid reports whether s is an enumerated volunteer status.
func (s VolunteerStatus) Valid() bool {
	switch s {
	case VolunteerPending, VolunteerApproved, VolunteerRejected:
		return true
	}
	return false
}

// Volunteer is a volunteer application.
type Volunteer struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                *uuid.UUID      `json:"user_id,omitempty"`
	FullName              string          `json:"full_name"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	DateOfBirth           *time.Time      `json:"date_of_birth,omitempty"`
	Address               string          `json:"address"`
	Skills                []string        `json:"skills"`
	Availability          string          `json:"availability"`
	Motivation            string          `json:"motivation"`
	Experience            string          `json:"experience"`
	EmergencyContactName  string          `json:"emergency_contact_name"`
	EmergencyContactPhone string          `json:"emergency_contact_phone"`
	Status                VolunteerStatus `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
