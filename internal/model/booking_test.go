package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingEntryActive(t *testing.T) {
	e := BookingEntry{Status: StatusActive}
	assert.True(t, e.Active())

	e.Status = StatusCancelled
	assert.False(t, e.Active())
}

func TestEventOver(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	ev := Event{StartsAt: now.Add(time.Minute)}
	assert.False(t, ev.Over(now))

	ev.StartsAt = now.Add(-time.Minute)
	assert.True(t, ev.Over(now))

	// An event starting exactly now can no longer be booked.
	ev.StartsAt = now
	assert.True(t, ev.Over(now))
}
