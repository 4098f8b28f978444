package ledger

import (
	"context"
	"sync"
	"time"
)

// Guard serializes reserve and cancel operations per event.  Each event
// gets its own lock cell, so bookings against different events never
// contend; two operations on the same event run strictly one after the
// other, which closes the check-then-act race where two concurrent
// reservations both observe enough free seats.
//
// A cell is a channel with capacity one used as a mutex.  Acquisition is
// bounded by the guard's timeout and by the caller's context, so a
// stuck or slow holder surfaces ErrBusy to waiters instead of a
// deadlock.
type Guard struct {
	mu      sync.Mutex
	cells   map[uint64]chan struct{}
	timeout time.Duration
}

// DefaultAcquireTimeout bounds lock acquisition when no explicit
// timeout is configured.
const DefaultAcquireTimeout = 5 * time.Second

// NewGuard returns a Guard whose Acquire calls give up after the given
// timeout.  A non-positive timeout falls back to DefaultAcquireTimeout.
func NewGuard(timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	return &Guard{
		cells:   make(map[uint64]chan struct{}),
		timeout: timeout,
	}
}

// cell returns the lock cell for an event, creating it on first use.
// Cells are never removed: the set of events with traffic is small and
// a stable cell avoids lock/unlock races around deletion.
func (g *Guard) cell(eventID uint64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.cells[eventID]
	if !ok {
		c = make(chan struct{}, 1)
		g.cells[eventID] = c
	}
	return c
}

// Acquire takes the event's lock and returns the release function.  It
// fails with ErrBusy when the lock cannot be taken within the guard's
// timeout, and with the context's error when the caller gives up first.
// The ledger is untouched in both failure cases.
func (g *Guard) Acquire(ctx context.Context, eventID uint64) (func(), error) {
	c := g.cell(eventID)

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case c <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-c }) }, nil
	case <-timer.C:
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
