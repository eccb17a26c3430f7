package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/booking"
	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/ledger"
	"github.com/tripworks/seatline/internal/model"
	"github.com/tripworks/seatline/internal/queue"
	queue_publisher "github.com/tripworks/seatline/internal/service"
)

// BookingHandler serves the authenticated booking flow: hold, release,
// confirm, list and cancel.
type BookingHandler struct {
	alloc   *booking.AllocationService
	cancel  *booking.CancellationService
	ledger  ledger.Store
	catalog *catalog.Catalog
	clk     clock.Clock

	// publishing is asynchronous and best-effort; overridable for tests.
	publishConfirmed func(context.Context, queue.BookingConfirmedEvent) error
	publishCancelled func(context.Context, queue.BookingCancelledEvent) error
}

// NewBookingHandler wires the handler to the booking services.
func NewBookingHandler(alloc *booking.AllocationService, cancel *booking.CancellationService, led ledger.Store, cat *catalog.Catalog, clk clock.Clock) *BookingHandler {
	return &BookingHandler{
		alloc:            alloc,
		cancel:           cancel,
		ledger:           led,
		catalog:          cat,
		clk:              clk,
		publishConfirmed: queue_publisher.PublishBookingConfirmed,
		publishCancelled: queue_publisher.PublishBookingCancelled,
	}
}

type holdRequest struct {
	SeatNumber string `json:"seat_number"`
}

// HoldSeat leases a seat on the route for the authenticated holder and
// returns the opaque token the later confirm or release must present.
func (h *BookingHandler) HoldSeat(c echo.Context) error {
	holder, err := requestHolder(c)
	if err != nil {
		return err
	}
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.SeatNumber = strings.TrimSpace(req.SeatNumber)
	if req.SeatNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number is required"})
	}

	tok, err := h.alloc.HoldSeat(c.Request().Context(), c.Param("id"), req.SeatNumber, holder)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":       tok.Value,
		"route_id":    tok.RouteID,
		"seat_number": tok.SeatNumber,
		"expires_at":  tok.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// ReleaseHold gives up an unconfirmed hold early.
func (h *BookingHandler) ReleaseHold(c echo.Context) error {
	if _, err := requestHolder(c); err != nil {
		return err
	}
	if err := h.alloc.ReleaseHold(c.Request().Context(), c.Param("token")); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type confirmRequest struct {
	Token          string `json:"token"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ConfirmBooking converts a hold into a booking. Retries with the same
// idempotency key receive the original booking.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	if _, err := requestHolder(c); err != nil {
		return err
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	booked, err := h.alloc.ConfirmBooking(c.Request().Context(), req.Token, strings.TrimSpace(req.IdempotencyKey))
	if err != nil {
		return domainError(c, err)
	}

	route, _ := h.catalog.Get(booked.RouteID)
	go func(b model.Booking, r model.Route) {
		_ = h.publishConfirmed(context.Background(), queue.BookingConfirmedEvent{
			BookingID:     b.ID,
			RouteID:       b.RouteID,
			Holder:        b.Holder,
			SeatNumber:    b.SeatNumber,
			Origin:        r.Origin,
			Destination:   r.Destination,
			VehicleNumber: r.VehicleNumber,
			DepartureTime: r.DepartureTime.UTC().Format(time.RFC3339),
			PriceCents:    b.PriceCents,
			ConfirmedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}(booked, route)

	return c.JSON(http.StatusCreated, bookingPayload(booked, route, h.clk.Now()))
}

// ListBookings returns the authenticated holder's bookings, newest first,
// with a derived upcoming/completed/cancelled phase.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	holder, err := requestHolder(c)
	if err != nil {
		return err
	}
	records, err := h.ledger.ListByHolder(c.Request().Context(), holder)
	if err != nil {
		return domainError(c, err)
	}
	now := h.clk.Now()
	out := make([]echo.Map, 0, len(records))
	for _, b := range records {
		route, _ := h.catalog.Get(b.RouteID)
		out = append(out, bookingPayload(b, route, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// CancelBooking cancels the holder's booking and frees the seat.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	holder, err := requestHolder(c)
	if err != nil {
		return err
	}
	cancelled, err := h.cancel.CancelBooking(c.Request().Context(), c.Param("id"), holder)
	if err != nil {
		return domainError(c, err)
	}

	go func(b model.Booking) {
		at := ""
		if b.CancelledAt != nil {
			at = b.CancelledAt.UTC().Format(time.RFC3339)
		}
		_ = h.publishCancelled(context.Background(), queue.BookingCancelledEvent{
			BookingID:   b.ID,
			RouteID:     b.RouteID,
			Holder:      b.Holder,
			SeatNumber:  b.SeatNumber,
			CancelledAt: at,
		})
	}(cancelled)

	route, _ := h.catalog.Get(cancelled.RouteID)
	return c.JSON(http.StatusOK, bookingPayload(cancelled, route, h.clk.Now()))
}
