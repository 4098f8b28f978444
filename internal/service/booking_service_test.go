package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onvent/seat-ledger/internal/ledger"
	"github.com/onvent/seat-ledger/internal/model"
	"github.com/onvent/seat-ledger/internal/queue"
)

type stubEvents struct {
	mu     sync.Mutex
	events map[uint64]*model.Event
}

func (s *stubEvents) GetEvent(_ context.Context, eventID uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return nil, ledger.ErrUnknownEvent
	}
	out := *ev
	return &out, nil
}

type stubPublisher struct {
	issued    []queue.TicketIssuedEvent
	cancelled []queue.TicketCancelledEvent
}

func (p *stubPublisher) PublishTicketIssued(_ context.Context, ev queue.TicketIssuedEvent) error {
	p.issued = append(p.issued, ev)
	return nil
}

func (p *stubPublisher) PublishTicketCancelled(_ context.Context, ev queue.TicketCancelledEvent) error {
	p.cancelled = append(p.cancelled, ev)
	return nil
}

type stubInvalidator struct {
	keys []string
}

func (i *stubInvalidator) Invalidate(_ context.Context, eventID string) {
	i.keys = append(i.keys, eventID)
}

func newTestService(events ...*model.Event) (*BookingService, *stubPublisher, *stubInvalidator) {
	m := make(map[uint64]*model.Event, len(events))
	for _, ev := range events {
		m[ev.ID] = ev
	}
	src := &stubEvents{events: m}
	pub := &stubPublisher{}
	inv := &stubInvalidator{}
	ldg := ledger.New(src, ledger.NewGuard(2*time.Second))
	return NewBookingService(ldg, src, pub, inv), pub, inv
}

func testEvent(id uint64, capacity int) *model.Event {
	return &model.Event{
		ID:         id,
		Title:      "Go Conference",
		Location:   "Vientiane",
		Capacity:   capacity,
		PriceCents: 2500,
		StartsAt:   time.Now().UTC().Add(48 * time.Hour),
	}
}

func TestBookAssemblesDetail(t *testing.T) {
	svc, pub, inv := newTestService(testEvent(1, 10))

	detail, err := svc.Book(context.Background(), 1, 7, 3)
	require.NoError(t, err)

	assert.NotZero(t, detail.TicketID)
	assert.NotEmpty(t, detail.TicketCode)
	assert.Equal(t, uint64(7), detail.UserID)
	assert.Equal(t, uint64(1), detail.EventID)
	assert.Equal(t, "Go Conference", detail.EventTitle)
	assert.Equal(t, "Vientiane", detail.EventLocation)
	assert.Equal(t, uint32(2500), detail.EventPriceCents)
	assert.Equal(t, 3, detail.Seats)
	assert.Equal(t, model.StatusActive, detail.Status)
	assert.Equal(t, 7, detail.AvailableSeats)
	assert.Nil(t, detail.CancelledAt)

	require.Len(t, pub.issued, 1)
	assert.Equal(t, detail.TicketID, pub.issued[0].BookingID)
	assert.Equal(t, detail.TicketCode, pub.issued[0].TicketCode)
	assert.Equal(t, 7, pub.issued[0].AvailableSeats)
	assert.NotEmpty(t, pub.issued[0].IssuedAt)

	assert.Equal(t, []string{"1"}, inv.keys)
}

func TestBookValidatesInput(t *testing.T) {
	svc, pub, inv := newTestService(testEvent(1, 10))
	ctx := context.Background()

	_, err := svc.Book(ctx, 0, 7, 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, err = svc.Book(ctx, 1, 0, 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, err = svc.Book(ctx, 1, 7, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	assert.Empty(t, pub.issued)
	assert.Empty(t, inv.keys)
}

func TestBookPassesThroughLedgerErrors(t *testing.T) {
	svc, pub, _ := newTestService(testEvent(1, 2))
	ctx := context.Background()

	_, err := svc.Book(ctx, 99, 7, 1)
	assert.ErrorIs(t, err, ledger.ErrUnknownEvent)

	_, err = svc.Book(ctx, 1, 7, 3)
	assert.ErrorIs(t, err, ledger.ErrCapacityExceeded)

	assert.Empty(t, pub.issued)
}

func TestAvailabilityDetail(t *testing.T) {
	svc, _, _ := newTestService(testEvent(1, 4))
	ctx := context.Background()

	_, err := svc.Book(ctx, 1, 7, 4)
	require.NoError(t, err)

	avail, err := svc.Availability(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), avail.EventID)
	assert.Equal(t, "Go Conference", avail.EventTitle)
	assert.Equal(t, 4, avail.Capacity)
	assert.Equal(t, 4, avail.BookedSeats)
	assert.Equal(t, 0, avail.AvailableSeats)
	assert.False(t, avail.Available)

	_, err = svc.Availability(ctx, 99)
	assert.ErrorIs(t, err, ledger.ErrUnknownEvent)
}

func TestCancelPublishesAndInvalidates(t *testing.T) {
	svc, pub, inv := newTestService(testEvent(1, 10))
	ctx := context.Background()

	detail, err := svc.Book(ctx, 1, 7, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, detail.TicketID, 7, "CUSTOMER"))

	require.Len(t, pub.cancelled, 1)
	assert.Equal(t, detail.TicketID, pub.cancelled[0].BookingID)
	assert.Equal(t, detail.TicketCode, pub.cancelled[0].TicketCode)
	assert.Equal(t, 2, pub.cancelled[0].Seats)
	assert.NotEmpty(t, pub.cancelled[0].CancelledAt)

	// One invalidation for the book, one for the cancel.
	assert.Equal(t, []string{"1", "1"}, inv.keys)

	err = svc.Cancel(ctx, detail.TicketID, 7, "CUSTOMER")
	assert.ErrorIs(t, err, ledger.ErrAlreadyCancelled)
	assert.Len(t, pub.cancelled, 1)
}

func TestCancelOwnershipAndAdmin(t *testing.T) {
	svc, _, _ := newTestService(testEvent(1, 10))
	ctx := context.Background()

	detail, err := svc.Book(ctx, 1, 7, 1)
	require.NoError(t, err)

	err = svc.Cancel(ctx, detail.TicketID, 8, "CUSTOMER")
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	require.NoError(t, svc.Cancel(ctx, detail.TicketID, 8, RoleAdmin))
}

func TestListUserBookings(t *testing.T) {
	svc, _, _ := newTestService(testEvent(1, 10), testEvent(2, 10))
	ctx := context.Background()

	first, err := svc.Book(ctx, 1, 7, 1)
	require.NoError(t, err)
	second, err := svc.Book(ctx, 2, 7, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, first.TicketID, 7, "CUSTOMER"))

	items, err := svc.ListUserBookings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first; cancelled entries stay listed.
	assert.Equal(t, second.TicketID, items[0].TicketID)
	assert.Equal(t, model.StatusActive, items[0].Status)
	assert.Equal(t, first.TicketID, items[1].TicketID)
	assert.Equal(t, model.StatusCancelled, items[1].Status)
	require.NotNil(t, items[1].CancelledAt)

	items, err = svc.ListUserBookings(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListUserBookingsVanishedEvent(t *testing.T) {
	ev := testEvent(1, 10)
	src := &stubEvents{events: map[uint64]*model.Event{1: ev}}
	ldg := ledger.New(src, ledger.NewGuard(2*time.Second))
	svc := NewBookingService(ldg, src, nil, nil)
	ctx := context.Background()

	detail, err := svc.Book(ctx, 1, 7, 1)
	require.NoError(t, err)

	src.mu.Lock()
	delete(src.events, 1)
	src.mu.Unlock()

	items, err := svc.ListUserBookings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, detail.TicketID, items[0].TicketID)
	assert.Empty(t, items[0].EventTitle)
}

func TestNilPublisherAndCache(t *testing.T) {
	ev := testEvent(1, 10)
	src := &stubEvents{events: map[uint64]*model.Event{1: ev}}
	ldg := ledger.New(src, ledger.NewGuard(2*time.Second))
	svc := NewBookingService(ldg, src, nil, nil)
	ctx := context.Background()

	detail, err := svc.Book(ctx, 1, 7, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, detail.TicketID, 7, "CUSTOMER"))
}
