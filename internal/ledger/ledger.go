package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/onvent/seat-ledger/internal/model"
)

// EventSource is the read interface to the external event store.  The
// ledger uses it to resolve an event's capacity and schedule; it never
// writes through it.  Implementations must return ErrUnknownEvent when
// no event exists for the given identifier.
type EventSource interface {
	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)
}

// Ledger is the authoritative record of booking entries for all events.
// It owns the entries exclusively: entries are created only by Reserve,
// mutated only by Cancel, and never deleted.  The per-event Guard
// linearizes the read-then-write span of Reserve and Cancel so that the
// active seat total for an event can never exceed its capacity
// regardless of how concurrent requests interleave.
//
// The mutex protects the entry maps themselves; the guard protects the
// decision.  Reads (Availability, ListForEvent, ListForUser) only take
// the read lock and return copies, so they never block bookings on
// other events and never expose live entries to callers.
type Ledger struct {
	events EventSource
	guard  *Guard
	now    func() time.Time

	mu      sync.RWMutex
	nextID  uint64
	byEvent map[uint64][]*model.BookingEntry
	byID    map[uint64]*model.BookingEntry
	byUser  map[uint64][]*model.BookingEntry
	codes   map[string]struct{}
}

// New returns an empty ledger reading capacities from the given event
// source and serializing per-event operations through the given guard.
func New(events EventSource, guard *Guard) *Ledger {
	if guard == nil {
		guard = NewGuard(0)
	}
	return &Ledger{
		events:  events,
		guard:   guard,
		now:     time.Now,
		byEvent: make(map[uint64][]*model.BookingEntry),
		byID:    make(map[uint64]*model.BookingEntry),
		byUser:  make(map[uint64][]*model.BookingEntry),
		codes:   make(map[string]struct{}),
	}
}

// Reserve grants seats for an event and returns the new booking entry.
// The whole request is all-or-nothing: either every requested seat is
// granted and a single Active entry is appended, or the ledger is left
// exactly as it was.  Under the event's guard it resolves the event,
// refuses past events, recomputes the active seat total and refuses the
// request with ErrCapacityExceeded when the grant would exceed
// capacity.
func (l *Ledger) Reserve(ctx context.Context, eventID, userID uint64, seats int) (*model.BookingEntry, error) {
	if eventID == 0 || userID == 0 || seats < 1 {
		return nil, ErrInvalidInput
	}

	release, err := l.guard.Acquire(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer release()

	ev, err := l.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	if ev.Over(now) {
		return nil, ErrEventOver
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	booked := l.activeSeatsLocked(eventID)
	if booked+seats > ev.Capacity {
		return nil, ErrCapacityExceeded
	}

	l.nextID++
	entry := &model.BookingEntry{
		ID:         l.nextID,
		TicketCode: l.issueCodeLocked(),
		EventID:    eventID,
		UserID:     userID,
		Seats:      seats,
		Status:     model.StatusActive,
		CreatedAt:  now,
	}
	l.byEvent[eventID] = append(l.byEvent[eventID], entry)
	l.byUser[userID] = append(l.byUser[userID], entry)
	l.byID[entry.ID] = entry

	out := *entry
	return &out, nil
}

// Cancel flips an active booking to Cancelled, freeing its seats for
// reuse.  Only the owner may cancel, unless the caller is an admin.  A
// second cancel of the same booking fails with ErrAlreadyCancelled and
// frees nothing: capacity is released exactly once.  The entry itself
// stays in the ledger as a tombstone.
func (l *Ledger) Cancel(ctx context.Context, bookingID, userID uint64, admin bool) error {
	if bookingID == 0 || userID == 0 {
		return ErrInvalidInput
	}

	l.mu.RLock()
	entry, ok := l.byID[bookingID]
	l.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	release, err := l.guard.Acquire(ctx, entry.EventID)
	if err != nil {
		return err
	}
	defer release()

	if entry.UserID != userID && !admin {
		return ErrForbidden
	}

	// The event may have been removed from the external store after the
	// booking was made; freeing seats is still safe then, so only an
	// existing event is checked for having started.
	ev, err := l.events.GetEvent(ctx, entry.EventID)
	if err != nil && !errors.Is(err, ErrUnknownEvent) {
		return err
	}
	now := l.now().UTC()
	if ev != nil && ev.Over(now) {
		return ErrEventOver
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Status == model.StatusCancelled {
		return ErrAlreadyCancelled
	}
	entry.Status = model.StatusCancelled
	entry.CancelledAt = &now
	return nil
}

// Availability derives the seat counts for one event: capacity from the
// event source, booked seats by scanning the event's active entries,
// available as the difference.  Reserve keeps the booked total within
// capacity, so the difference is never negative.  The result is a
// point-in-time view and is advisory
// only; the authoritative decision happens inside Reserve.
func (l *Ledger) Availability(ctx context.Context, eventID uint64) (*model.Availability, error) {
	if eventID == 0 {
		return nil, ErrInvalidInput
	}
	ev, err := l.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	booked := l.activeSeatsLocked(eventID)
	l.mu.RUnlock()

	return &model.Availability{
		EventID:        eventID,
		Capacity:       ev.Capacity,
		BookedSeats:    booked,
		AvailableSeats: ev.Capacity - booked,
	}, nil
}

// ListForEvent returns copies of all entries for an event, cancelled
// ones included, in the order they were created.
func (l *Ledger) ListForEvent(eventID uint64) []model.BookingEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.byEvent[eventID]
	out := make([]model.BookingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out
}

// ListForUser returns copies of all entries made by a user across all
// events, newest first.  An unknown user yields an empty slice.
func (l *Ledger) ListForUser(userID uint64) []model.BookingEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.byUser[userID]
	out := make([]model.BookingEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, *entries[i])
	}
	return out
}

// Get returns a copy of a single entry by its ledger identifier.
func (l *Ledger) Get(bookingID uint64) (*model.BookingEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.byID[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *entry
	return &out, nil
}

// activeSeatsLocked sums the seats of all active entries for an event.
// Callers must hold at least the read lock.
func (l *Ledger) activeSeatsLocked(eventID uint64) int {
	total := 0
	for _, e := range l.byEvent[eventID] {
		if e.Active() {
			total += e.Seats
		}
	}
	return total
}

// issueCodeLocked draws ticket codes until one is globally fresh and
// records it.  Codes stay recorded after cancellation, so a code is
// never issued twice.  Callers must hold the write lock.
func (l *Ledger) issueCodeLocked() string {
	for {
		code := newTicketCode()
		if _, taken := l.codes[code]; !taken {
			l.codes[code] = struct{}{}
			return code
		}
	}
}
