// Package repository contains the data access adapter for the external
// event store.  The events table is owned by the event management
// service; the ledger only reads capacity and display metadata from it
// and never writes back.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons

	"github.com/onvent/seat-ledger/internal/ledger"
	"github.com/onvent/seat-ledger/internal/model"
)

// EventRepo reads event capacity records from MySQL.  It implements
// ledger.EventSource: a missing row is reported as
// ledger.ErrUnknownEvent so the ledger and the handlers above it can
// treat the condition uniformly.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB for health checks.
func (r *EventRepo) DB() *sql.DB { return r.db }

// GetEvent loads a single event by ID.  The connection is opened with
// parseTime=true and loc=UTC (see database.Open), so starts_at scans
// directly into a UTC time.Time.  It returns ledger.ErrUnknownEvent
// when no row matches.
func (r *EventRepo) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, title, location, max_attendees, price_cents, starts_at
	           FROM events WHERE id = ?`
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.Title, &ev.Location, &ev.Capacity, &ev.PriceCents, &ev.StartsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUnknownEvent
		}
		return nil, err
	}
	return &ev, nil
}
