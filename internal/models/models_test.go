package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusEnumerations(t *testing.T) {
	for _, s := range VolunteerStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, VolunteerStatus("archived").Valid())

	assert.True(t, DonationCompleted.Valid())
	assert.False(t, DonationStatus("refunded").Valid())

	assert.True(t, DonationYearly.Valid())
	assert.False(t, DonationType("weekly").Valid())

	assert.True(t, EventCancelled.Valid())
	assert.False(t, EventStatus("").Valid())

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("speaker").Valid())
}

func TestDonorDisplayName(t *testing.T) {
	assert.Equal(t, "Anonymous", DonorDisplayName("Jane", true))
	assert.Equal(t, "Jane", DonorDisplayName("Jane", false))
}

func TestEventUpcoming(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	assert.True(t, (&Event{EventDate: &future}).Upcoming(now))
	assert.False(t, (&Event{EventDate: &past}).Upcoming(now))
	assert.False(t, (&Event{}).Upcoming(now))
}
