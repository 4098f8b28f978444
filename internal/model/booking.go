package model

import "time"

// BookingStatus is the lifecycle state of a booking entry.  A booking is
// created Active and may move to Cancelled exactly once; there is no
// transition back.  Cancelled entries are kept forever as tombstones so
// the ledger stays auditable and ticket codes are never reused.
type BookingStatus string

const (
	// StatusActive marks a booking whose seats count against the
	// event's capacity.
	StatusActive BookingStatus = "ACTIVE"
	// StatusCancelled marks a booking whose seats have been returned
	// to the pool.  Terminal.
	StatusCancelled BookingStatus = "CANCELLED"
)

// BookingEntry records a single reservation in the ledger: who booked,
// for which event, how many seats, and where the entry is in its
// lifecycle.
//
// Fields:
//  ID          – ledger-assigned identifier, unique across all events.
//  TicketCode  – printable ticket code, globally unique, never reused.
//  EventID     – event the seats were reserved for.
//  UserID      – user who made the booking.
//  Seats       – number of seats granted, always >= 1.
//  Status      – ACTIVE or CANCELLED.
//  CreatedAt   – when the booking was granted.
//  CancelledAt – when the booking was cancelled, nil while active.
type BookingEntry struct {
	ID          uint64        `json:"id"`
	TicketCode  string        `json:"ticket_code"`
	EventID     uint64        `json:"event_id"`
	UserID      uint64        `json:"user_id"`
	Seats       int           `json:"seats"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// Active reports whether the entry still counts against capacity.
func (b *BookingEntry) Active() bool { return b.Status == StatusActive }

// Availability is the derived seat count view for one event.  It is
// recomputed from the ledger on demand and is advisory the instant it is
// returned: a later booking may still fail even if AvailableSeats was
// positive, because only the reserve decision itself is made under the
// event's guard.
type Availability struct {
	EventID        uint64 `json:"event_id"`
	Capacity       int    `json:"capacity"`
	BookedSeats    int    `json:"booked_seats"`
	AvailableSeats int    `json:"available_seats"`
}
