// Package handler exposes the booking facade over HTTP.  Handlers bind
// and validate the request shape, extract the caller identity injected
// by the JWT middleware, delegate to the service layer and translate
// the ledger's sentinel errors into HTTP status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onvent/seat-ledger/internal/ledger"
	"github.com/onvent/seat-ledger/internal/service"
)

// BookingHandler serves the book / availability / list / cancel
// endpoints on top of the booking service.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc}
}

// Book handles POST /v1/tickets/book.  The body carries the event and
// an optional seat count; an omitted count books a single seat.  The
// caller identity comes from the JWT.  On success it responds 201 with
// the booking detail including the ticket code and the seats remaining
// after the grant.
func (h *BookingHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		EventID uint64 `json:"event_id"`
		Seats   *int   `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats := 1
	if body.Seats != nil {
		seats = *body.Seats
	}

	detail, err := h.svc.Book(c.Request().Context(), body.EventID, userID, seats)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Availability handles GET /v1/events/:id/availability.  Public: no
// authentication required, so clients can check seat counts before
// booking.  The returned counts are advisory; only the book call itself
// decides under the event's guard.
func (h *BookingHandler) Availability(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	detail, err := h.svc.Availability(c.Request().Context(), eventID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListMyTickets handles GET /v1/my-tickets.  It returns all bookings of
// the authenticated user, newest first, cancelled entries included.
// Users with no bookings get an empty array.
func (h *BookingHandler) ListMyTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	items, err := h.svc.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Cancel handles DELETE /v1/tickets/:id.  Only the owner may cancel,
// unless the caller holds the admin role.  A second cancel of the same
// ticket is refused and frees nothing.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	role, _ := c.Get("role").(string)
	if err := h.svc.Cancel(c.Request().Context(), bookingID, userID, role); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// bookingError maps the ledger's sentinel errors onto the HTTP error
// taxonomy.  Busy gets a Retry-After hint because retrying with backoff
// is safe; capacity refusals do not, because retrying without freed
// seats is pointless.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input"})
	case errors.Is(err, ledger.ErrUnknownEvent):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, ledger.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, ledger.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient seats available"})
	case errors.Is(err, ledger.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, ledger.ErrEventOver):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event already started"})
	case errors.Is(err, ledger.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, ledger.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event busy, retry later"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// getUserID extracts the caller's user ID from the context values set
// by the JWT middleware.  The claim may arrive as a string or a JSON
// number depending on the issuer.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
