// Package queue defines message payloads exchanged over the message
// broker and the consumer that turns them into audit log lines.
package queue

// TicketIssuedEvent is published after the ledger grants a booking.  It
// carries enough context for downstream consumers to log, notify or
// feed analytics without querying the ledger again.
type TicketIssuedEvent struct {
	BookingID      uint64 `json:"booking_id"`
	TicketCode     string `json:"ticket_code"`
	UserID         uint64 `json:"user_id"`
	EventID        uint64 `json:"event_id"`
	EventTitle     string `json:"event_title"`
	Seats          int    `json:"seats"`
	AvailableSeats int    `json:"available_seats"`
	IssuedAt       string `json:"issued_at"`
}

// TicketCancelledEvent is published after a booking is cancelled and
// its seats returned to the pool.
type TicketCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	TicketCode  string `json:"ticket_code"`
	UserID      uint64 `json:"user_id"`
	EventID     uint64 `json:"event_id"`
	Seats       int    `json:"seats"`
	CancelledAt string `json:"cancelled_at"`
}
