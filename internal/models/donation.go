package models

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus is the payment state recorded for a donation.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

// Valid reports whether s is an enumerated donation status.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed:
		return true
	}
	return false
}

// DonationType is the donation frequency.
type DonationType string

const (
	DonationOneTime DonationType = "one-time"
	DonationMonthly DonationType = "monthly"
	DonationYearly  DonationType = "yearly"
)

// Valid reports whether t is an enumerated donation type.
func (t DonationType) Valid() bool {
	switch t {
	case DonationOneTime, DonationMonthly, DonationYearly:
		return true
	}
	return false
}

// AnonymousDonor replaces the donor name when a donation is anonymous.
const AnonymousDonor = "Anonymous"

// DefaultPurpose is stored when the donation form leaves purpose empty.
const DefaultPurpose = "general"

// Donation is a recorded donation intent.
type Donation struct {
	ID              uuid.UUID      `json:"id"`
	DonorName       string         `json:"donor_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Amount          float64        `json:"amount"`
	DonationType    DonationType   `json:"donation_type"`
	Purpose         string         `json:"purpose"`
	IsAnonymous     bool           `json:"is_anonymous"`
	Status          DonationStatus `json:"status"`
	ProviderOrderID string         `json:"provider_order_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// DonorDisplayName returns AnonymousDonor for anonymous donations, name otherwise.
func DonorDisplayName(name string, anonymous bool) string {
	if anonymous {
		return AnonymousDonor
	}
	return name
}
