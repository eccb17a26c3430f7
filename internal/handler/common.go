// Package handler exposes the booking engine over HTTP. Handlers parse and
// validate requests, call the services and translate the domain's sentinel
// errors into status codes; they hold no booking rules of their own.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/model"
)

// requestHolder returns the authenticated holder identity placed in the
// context by the JWT middleware.
func requestHolder(c echo.Context) (string, error) {
	v := c.Get("user_id")
	holder, ok := v.(string)
	if !ok || holder == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing holder identity")
	}
	return holder, nil
}

// domainError maps the engine's sentinel errors onto HTTP responses. Every
// handler funnels service errors through here so one error always means one
// status code.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrRouteNotFound),
		errors.Is(err, model.ErrSeatNotFound),
		errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrInvalidToken):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrSeatUnavailable),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrDepartureTimePassed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrNotBookingHolder):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrIdempotencyKeyRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// bookingPayload is the JSON shape of a booking in responses. Phase is
// derived per request from the route's departure time and never stored.
func bookingPayload(b model.Booking, route model.Route, now time.Time) echo.Map {
	out := echo.Map{
		"id":          b.ID,
		"route_id":    b.RouteID,
		"seat_number": b.SeatNumber,
		"price_cents": b.PriceCents,
		"status":      string(b.Status),
		"created_at":  b.CreatedAt.UTC().Format(time.RFC3339),
		"phase":       bookingPhase(b, route, now),
	}
	if b.CancelledAt != nil {
		out["cancelled_at"] = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	if route.ID != "" {
		out["origin"] = route.Origin
		out["destination"] = route.Destination
		out["departure_time"] = route.DepartureTime.UTC().Format(time.RFC3339)
		out["vehicle_number"] = route.VehicleNumber
	}
	return out
}

// bookingPhase classifies a booking for display: cancelled bookings keep
// their status, active ones are upcoming until departure and completed
// afterwards.
func bookingPhase(b model.Booking, route model.Route, now time.Time) string {
	if b.Status == model.BookingStatusCancelled {
		return "cancelled"
	}
	if route.ID != "" && !route.DepartureTime.After(now) {
		return "completed"
	}
	return "upcoming"
}
