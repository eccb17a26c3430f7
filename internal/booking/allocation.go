// Package booking orchestrates the hold -> confirm protocol and booking
// cancellation across the seat inventory and the booking ledger. The
// services here never synthesize seat or booking state themselves; they
// invoke the two owners and interpret their results.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/inventory"
	"github.com/tripworks/seatline/internal/ledger"
	"github.com/tripworks/seatline/internal/model"
)

// DefaultHoldTTL is how long a hold blocks a seat before the lease lapses.
const DefaultHoldTTL = 300 * time.Second

// AllocationService is the sole entry point for creating a booking. A hold
// leases the seat; a confirm converts the hold into a ledger entry and a
// booked seat.
type AllocationService struct {
	catalog   *catalog.Catalog
	inventory *inventory.SeatInventory
	ledger    ledger.Store
	clk       clock.Clock
	holdTTL   time.Duration
}

// Option configures an AllocationService.
type Option func(*AllocationService)

// WithHoldTTL overrides the default lease duration for new holds.
func WithHoldTTL(d time.Duration) Option {
	return func(s *AllocationService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// NewAllocationService wires the service to its collaborators.
func NewAllocationService(cat *catalog.Catalog, inv *inventory.SeatInventory, led ledger.Store, clk clock.Clock, opts ...Option) *AllocationService {
	svc := &AllocationService{
		catalog:   cat,
		inventory: inv,
		ledger:    led,
		clk:       clk,
		holdTTL:   DefaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// HoldSeat validates the route and delegates the atomic transition to the
// inventory. It has no side effect on the ledger; an unconfirmed hold
// simply lapses.
func (s *AllocationService) HoldSeat(ctx context.Context, routeID, seatNumber, holder string) (model.HoldToken, error) {
	if _, err := s.catalog.Get(routeID); err != nil {
		return model.HoldToken{}, err
	}
	return s.inventory.TryHold(routeID, seatNumber, holder, s.holdTTL)
}

// ConfirmBooking converts a hold into a booking. The caller must supply the
// same idempotency key on every retry of an ambiguous outcome; the engine
// never creates two bookings for the same key. The price is snapshotted
// from the catalog at confirm time. On any failure no booking is created
// and the token is consumed.
func (s *AllocationService) ConfirmBooking(ctx context.Context, tokenValue, idempotencyKey string) (model.Booking, error) {
	if idempotencyKey == "" {
		return model.Booking{}, model.ErrIdempotencyKeyRequired
	}

	// Idempotent replay: answer retries with the record the first attempt
	// produced, without touching seat state.
	if prior, err := s.ledger.FindByIdempotencyKey(ctx, idempotencyKey); err != nil {
		return model.Booking{}, err
	} else if prior != nil {
		return *prior, nil
	}

	bookingID := uuid.NewString()
	committed, err := s.inventory.Commit(tokenValue, bookingID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			// A concurrent retry with the same key may have consumed the
			// token and appended the booking between our ledger check and
			// the commit. Re-read before reporting the token invalid.
			if prior, ferr := s.ledger.FindByIdempotencyKey(ctx, idempotencyKey); ferr == nil && prior != nil {
				return *prior, nil
			}
		}
		return model.Booking{}, err
	}

	route, err := s.catalog.Get(committed.RouteID)
	if err != nil {
		// The catalog never loses a route after a hold was granted on it;
		// revert the seat rather than strand it if that assumption breaks.
		_ = s.inventory.ReleaseBooked(committed.RouteID, committed.SeatNumber)
		return model.Booking{}, err
	}

	record := model.Booking{
		ID:             bookingID,
		RouteID:        committed.RouteID,
		SeatNumber:     committed.SeatNumber,
		Holder:         committed.Holder,
		PriceCents:     route.PriceCents,
		Status:         model.BookingStatusBooked,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      s.clk.Now(),
	}
	stored, err := s.ledger.Append(ctx, record)
	if err != nil {
		// No booked seat may exist without a ledger entry.
		_ = s.inventory.ReleaseBooked(committed.RouteID, committed.SeatNumber)
		return model.Booking{}, err
	}
	return stored, nil
}

// ReleaseHold gives up an unconfirmed hold, returning the seat to the pool
// immediately instead of waiting for the lease to lapse.
func (s *AllocationService) ReleaseHold(ctx context.Context, tokenValue string) error {
	return s.inventory.Release(tokenValue)
}
