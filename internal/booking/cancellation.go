package booking

import (
	"context"
	"log"

	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/inventory"
	"github.com/tripworks/seatline/internal/ledger"
	"github.com/tripworks/seatline/internal/model"
)

// CancellationService validates and executes booking cancellation: the
// ledger records the cancellation first, then the seat is returned to the
// pool.
type CancellationService struct {
	catalog   *catalog.Catalog
	inventory *inventory.SeatInventory
	ledger    ledger.Store
	clk       clock.Clock
}

// NewCancellationService wires the service to its collaborators.
func NewCancellationService(cat *catalog.Catalog, inv *inventory.SeatInventory, led ledger.Store, clk clock.Clock) *CancellationService {
	return &CancellationService{
		catalog:   cat,
		inventory: inv,
		ledger:    led,
		clk:       clk,
	}
}

// CancelBooking cancels the booking on behalf of the requester and returns
// the updated record. Cancellation is rejected for unknown bookings, for
// requesters other than the booking holder, for bookings already cancelled,
// and once the route's departure time is at or before now.
func (s *CancellationService) CancelBooking(ctx context.Context, bookingID, requester string) (model.Booking, error) {
	booking, err := s.ledger.Find(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if booking.Holder != requester {
		return model.Booking{}, model.ErrNotBookingHolder
	}
	if booking.Status == model.BookingStatusCancelled {
		return model.Booking{}, model.ErrAlreadyCancelled
	}
	route, err := s.catalog.Get(booking.RouteID)
	if err != nil {
		return model.Booking{}, err
	}
	now := s.clk.Now()
	if !route.DepartureTime.After(now) {
		return model.Booking{}, model.ErrDepartureTimePassed
	}

	if err := s.ledger.MarkCancelled(ctx, bookingID, now); err != nil {
		return model.Booking{}, err
	}
	// The ledger is authoritative for booking status. A seat that is
	// somehow already free again is benign, so a failed release never
	// fails the cancellation.
	if err := s.inventory.ReleaseBooked(booking.RouteID, booking.SeatNumber); err != nil {
		log.Printf("cancellation: release seat %s/%s: %v", booking.RouteID, booking.SeatNumber, err)
	}

	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now
	return booking, nil
}
