// Package service implements the booking facade: the thin composition
// layer between the HTTP handlers and the seat ledger.  It validates
// request shape before the ledger is touched, assembles responses with
// event metadata, publishes broker events after successful mutations
// and invalidates the availability cache so reads never trail writes.
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/onvent/seat-ledger/internal/ledger"
	"github.com/onvent/seat-ledger/internal/model"
	"github.com/onvent/seat-ledger/internal/queue"
)

// RoleAdmin is the JWT role allowed to cancel bookings it does not own.
const RoleAdmin = "ADMIN"

// AvailabilityInvalidator drops cached availability for an event after
// a ledger mutation.  Implemented by middleware.AvailabilityCache; a
// nil invalidator disables invalidation.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, eventID string)
}

// BookingDetail is the external view of a booking entry, enriched with
// event metadata and the seat count remaining after the operation that
// produced it.
type BookingDetail struct {
	TicketID        uint64              `json:"ticket_id"`
	TicketCode      string              `json:"ticket_code"`
	UserID          uint64              `json:"user_id"`
	EventID         uint64              `json:"event_id"`
	EventTitle      string              `json:"event_title"`
	EventLocation   string              `json:"event_location"`
	EventDate       time.Time           `json:"event_date"`
	EventPriceCents uint32              `json:"event_price_cents"`
	Seats           int                 `json:"seats"`
	Status          model.BookingStatus `json:"status"`
	PurchasedAt     time.Time           `json:"purchased_at"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	AvailableSeats  int                 `json:"available_seats"`
}

// AvailabilityDetail is the external view of an event's derived seat
// counts.
type AvailabilityDetail struct {
	EventID        uint64 `json:"event_id"`
	EventTitle     string `json:"event_title"`
	Capacity       int    `json:"capacity"`
	BookedSeats    int    `json:"booked_seats"`
	AvailableSeats int    `json:"available_seats"`
	Available      bool   `json:"available"`
}

// BookingService composes the ledger, the event store, the broker
// publisher and the availability cache into the three caller-facing
// operations: book, check availability, cancel (plus the user listing).
type BookingService struct {
	ledger *ledger.Ledger
	events ledger.EventSource
	pub    Publisher
	cache  AvailabilityInvalidator
}

// NewBookingService constructs the facade.  pub and cache may be nil;
// booking then proceeds without broker events or cache invalidation.
func NewBookingService(l *ledger.Ledger, events ledger.EventSource, pub Publisher, cache AvailabilityInvalidator) *BookingService {
	return &BookingService{ledger: l, events: events, pub: pub, cache: cache}
}

// Book validates the request shape and asks the ledger to reserve the
// seats.  On success it publishes a ticket.issued event and drops the
// event's cached availability before returning the assembled detail.
func (s *BookingService) Book(ctx context.Context, eventID, userID uint64, seats int) (*BookingDetail, error) {
	if eventID == 0 || userID == 0 || seats < 1 {
		return nil, ledger.ErrInvalidInput
	}

	entry, err := s.ledger.Reserve(ctx, eventID, userID, seats)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	avail, err := s.ledger.Availability(ctx, eventID)
	if err != nil {
		return nil, err
	}

	detail := buildDetail(entry, ev, avail.AvailableSeats)

	if s.pub != nil {
		_ = s.pub.PublishTicketIssued(ctx, queue.TicketIssuedEvent{
			BookingID:      entry.ID,
			TicketCode:     entry.TicketCode,
			UserID:         entry.UserID,
			EventID:        entry.EventID,
			EventTitle:     ev.Title,
			Seats:          entry.Seats,
			AvailableSeats: avail.AvailableSeats,
			IssuedAt:       entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return detail, nil
}

// Availability returns the derived seat counts for one event.  The
// read path takes no write lock; the result is advisory, never a
// reservation guarantee.
func (s *BookingService) Availability(ctx context.Context, eventID uint64) (*AvailabilityDetail, error) {
	if eventID == 0 {
		return nil, ledger.ErrInvalidInput
	}
	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	avail, err := s.ledger.Availability(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDetail{
		EventID:        eventID,
		EventTitle:     ev.Title,
		Capacity:       avail.Capacity,
		BookedSeats:    avail.BookedSeats,
		AvailableSeats: avail.AvailableSeats,
		Available:      avail.AvailableSeats > 0,
	}, nil
}

// ListUserBookings returns the caller's bookings, newest first,
// cancelled entries included.  Event metadata and availability are
// looked up once per distinct event.  Entries whose event has vanished
// from the store are still listed, with the metadata fields zeroed.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	if userID == 0 {
		return nil, ledger.ErrInvalidInput
	}

	entries := s.ledger.ListForUser(userID)
	out := make([]BookingDetail, 0, len(entries))

	evCache := make(map[uint64]*model.Event)
	availCache := make(map[uint64]int)
	for i := range entries {
		entry := &entries[i]
		ev, ok := evCache[entry.EventID]
		if !ok {
			loaded, err := s.events.GetEvent(ctx, entry.EventID)
			if err != nil && !errors.Is(err, ledger.ErrUnknownEvent) {
				return nil, err
			}
			if loaded == nil {
				loaded = &model.Event{ID: entry.EventID}
			}
			evCache[entry.EventID] = loaded
			ev = loaded

			if avail, err := s.ledger.Availability(ctx, entry.EventID); err == nil {
				availCache[entry.EventID] = avail.AvailableSeats
			}
		}
		out = append(out, *buildDetail(entry, ev, availCache[entry.EventID]))
	}
	return out, nil
}

// Cancel flips the caller's booking to cancelled.  Admin-role callers
// may cancel any booking.  On success it publishes a ticket.cancelled
// event and drops the event's cached availability.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint64, role string) error {
	if bookingID == 0 || userID == 0 {
		return ledger.ErrInvalidInput
	}

	if err := s.ledger.Cancel(ctx, bookingID, userID, role == RoleAdmin); err != nil {
		return err
	}

	entry, err := s.ledger.Get(bookingID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, entry.EventID)

	if s.pub != nil {
		cancelledAt := ""
		if entry.CancelledAt != nil {
			cancelledAt = entry.CancelledAt.Format(time.RFC3339)
		}
		_ = s.pub.PublishTicketCancelled(ctx, queue.TicketCancelledEvent{
			BookingID:   entry.ID,
			TicketCode:  entry.TicketCode,
			UserID:      entry.UserID,
			EventID:     entry.EventID,
			Seats:       entry.Seats,
			CancelledAt: cancelledAt,
		})
	}
	return nil
}

func (s *BookingService) invalidate(ctx context.Context, eventID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, strconv.FormatUint(eventID, 10))
	}
}

func buildDetail(entry *model.BookingEntry, ev *model.Event, available int) *BookingDetail {
	return &BookingDetail{
		TicketID:        entry.ID,
		TicketCode:      entry.TicketCode,
		UserID:          entry.UserID,
		EventID:         entry.EventID,
		EventTitle:      ev.Title,
		EventLocation:   ev.Location,
		EventDate:       ev.StartsAt,
		EventPriceCents: ev.PriceCents,
		Seats:           entry.Seats,
		Status:          entry.Status,
		PurchasedAt:     entry.CreatedAt,
		CancelledAt:     entry.CancelledAt,
		AvailableSeats:  available,
	}
}
