// Package ledger implements the seat reservation ledger: the
// authoritative record of every booking attempt per event, with the
// guarantee that active seats never exceed an event's capacity no matter
// how requests interleave.  This file defines the sentinel errors the
// ledger and the facade return.  Handlers compare against them with
// errors.Is and translate them into HTTP responses.
package ledger

import "errors"

// ErrInvalidInput is returned for malformed requests (non-positive seat
// counts, zero identifiers) before the ledger is touched.  Handlers map
// it to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownEvent is returned when the event identifier does not resolve
// against the event store.  Handlers map it to 404.
var ErrUnknownEvent = errors.New("unknown event")

// ErrCapacityExceeded is returned when granting the requested seats
// would push the event's active total above its capacity.  The request
// is refused whole; no partial grant occurs.  Retrying without freed
// capacity is pointless, so handlers map it to 409 without retry hints.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrNotFound is returned when a booking identifier does not exist in
// the ledger.  Handlers map it to 404.
var ErrNotFound = errors.New("booking not found")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already cancelled.  The first cancel freed the seats; a second cancel
// must not free them again.  Handlers map it to 409.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrForbidden is returned when the caller is neither the owner of the
// booking nor an admin.  Handlers map it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrBusy is returned when the per-event guard cannot be acquired
// within the configured bound.  The ledger was not modified; callers
// may retry with backoff.  Handlers map it to 503 with Retry-After.
var ErrBusy = errors.New("event busy")

// ErrEventOver is returned when booking or cancelling against an event
// that has already started.  Handlers map it to 409.
var ErrEventOver = errors.New("event already started")
