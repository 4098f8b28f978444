package model

import "time"

// Event mirrors the events table owned by the external event service.
// The ledger only ever reads it: capacity is fixed at event creation and
// the ledger never writes back.  Title, location, date and price are
// carried along so booking responses can be assembled without a second
// lookup.
//
// Fields:
//  ID         – events.id
//  Title      – events.title
//  Location   – events.location
//  Capacity   – events.max_attendees, the total sellable seats
//  PriceCents – events.price_cents
//  StartsAt   – events.starts_at, in UTC
type Event struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Capacity   int       `json:"capacity"`
	PriceCents uint32    `json:"price_cents"`
	StartsAt   time.Time `json:"starts_at"`
}

// Over reports whether the event has already started at the given
// instant.  Bookings and cancellations are both refused once an event is
// over, matching the booking rules of the upstream service.
func (e *Event) Over(now time.Time) bool { return !e.StartsAt.After(now) }
