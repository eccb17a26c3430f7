package booking

import (
	"context"
	"testing"
	"time"

	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/inventory"
	"github.com/tripworks/seatline/internal/ledger"
	"github.com/tripworks/seatline/internal/model"
)

type fixture struct {
	catalog   *catalog.Catalog
	inventory *inventory.SeatInventory
	ledger    *ledger.MemoryStore
	clk       *clock.Manual
	alloc     *AllocationService
	cancel    *CancellationService
}

func newFixture(t *testing.T, departure time.Time, opts ...Option) *fixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cat := catalog.New()
	route := model.Route{
		ID:            "route-1",
		Kind:          model.RouteKindTrain,
		Origin:        "Mumbai",
		Destination:   "Delhi",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(16 * time.Hour),
		VehicleNumber: "RAJ-2024",
		SeatsTotal:    4,
		PriceCents:    125000,
	}
	if err := cat.Add(route); err != nil {
		t.Fatalf("catalog.Add: %v", err)
	}

	inv := inventory.New(clk)
	if err := inv.AddRoute("route-1", []string{"A1", "A2", "B1", "B2"}); err != nil {
		t.Fatalf("inventory.AddRoute: %v", err)
	}

	led := ledger.NewMemoryStore()
	return &fixture{
		catalog:   cat,
		inventory: inv,
		ledger:    led,
		clk:       clk,
		alloc:     NewAllocationService(cat, inv, led, clk, opts...),
		cancel:    NewCancellationService(cat, inv, led, clk),
	}
}

func futureDeparture() time.Time {
	return time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
}

func TestAllocationService_HoldSeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("grants a hold with the configured TTL", func(t *testing.T) {
		f := newFixture(t, futureDeparture(), WithHoldTTL(2*time.Minute))

		tok, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		if err != nil {
			t.Fatalf("HoldSeat: %v", err)
		}
		if got, want := tok.ExpiresAt, f.clk.Now().Add(2*time.Minute); !got.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, got)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		f := newFixture(t, futureDeparture())
		if _, err := f.alloc.HoldSeat(ctx, "route-9", "A1", "user-1"); err != model.ErrRouteNotFound {
			t.Fatalf("expected ErrRouteNotFound, got %v", err)
		}
	})

	t.Run("contended seat", func(t *testing.T) {
		f := newFixture(t, futureDeparture())
		if _, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1"); err != nil {
			t.Fatalf("HoldSeat: %v", err)
		}
		if _, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-2"); err != model.ErrSeatUnavailable {
			t.Fatalf("expected ErrSeatUnavailable, got %v", err)
		}
	})
}

func TestAllocationService_ConfirmBooking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a booking with a price snapshot", func(t *testing.T) {
		f := newFixture(t, futureDeparture())

		tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		b, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1")
		if err != nil {
			t.Fatalf("ConfirmBooking: %v", err)
		}
		if b.ID == "" {
			t.Fatalf("expected a booking identifier")
		}
		if b.RouteID != "route-1" || b.SeatNumber != "A1" || b.Holder != "user-1" {
			t.Fatalf("unexpected booking: %+v", b)
		}
		if b.PriceCents != 125000 {
			t.Fatalf("expected price snapshot 125000, got %d", b.PriceCents)
		}
		if b.Status != model.BookingStatusBooked {
			t.Fatalf("expected booked status, got %s", b.Status)
		}

		snap, _ := f.inventory.Snapshot("route-1")
		if snap[0].State != model.SeatBooked || snap[0].BookingID != b.ID {
			t.Fatalf("expected A1 booked under %s, got %+v", b.ID, snap[0])
		}
	})

	t.Run("replays the same booking for the same key", func(t *testing.T) {
		f := newFixture(t, futureDeparture())

		tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		first, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1")
		if err != nil {
			t.Fatalf("ConfirmBooking: %v", err)
		}
		second, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1")
		if err != nil {
			t.Fatalf("retry ConfirmBooking: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected identical booking on replay, got %s and %s", first.ID, second.ID)
		}

		all, _ := f.ledger.ListByHolder(ctx, "user-1")
		if len(all) != 1 {
			t.Fatalf("expected exactly one ledger entry, got %d", len(all))
		}
	})

	t.Run("expired hold cannot be confirmed", func(t *testing.T) {
		f := newFixture(t, futureDeparture(), WithHoldTTL(time.Second))

		tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		f.clk.Advance(2 * time.Second)

		if _, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1"); err != model.ErrHoldExpired {
			t.Fatalf("expected ErrHoldExpired, got %v", err)
		}
		snap, _ := f.inventory.Snapshot("route-1")
		if snap[0].State != model.SeatAvailable {
			t.Fatalf("expected reclaimed seat, got %+v", snap[0])
		}
		all, _ := f.ledger.ListByHolder(ctx, "user-1")
		if len(all) != 0 {
			t.Fatalf("expected no ledger entry, got %d", len(all))
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newFixture(t, futureDeparture())
		if _, err := f.alloc.ConfirmBooking(ctx, "bogus", "key-1"); err != model.ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		f := newFixture(t, futureDeparture())
		tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		if _, err := f.alloc.ConfirmBooking(ctx, tok.Value, ""); err != model.ErrIdempotencyKeyRequired {
			t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
		}
	})

	t.Run("consumed token with a seen key still replays", func(t *testing.T) {
		f := newFixture(t, futureDeparture())

		tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
		first, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1")
		if err != nil {
			t.Fatalf("ConfirmBooking: %v", err)
		}

		// The token is consumed, but the retry carries the original key, so
		// the commit failure is answered with the prior record.
		again, err := f.alloc.ConfirmBooking(ctx, tok.Value, "key-1")
		if err != nil {
			t.Fatalf("retry ConfirmBooking: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("expected replayed booking %s, got %s", first.ID, again.ID)
		}
	})
}

func TestAllocationService_ReleaseHold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, futureDeparture())

	tok, _ := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
	if err := f.alloc.ReleaseHold(ctx, tok.Value); err != nil {
		t.Fatalf("ReleaseHold: %v", err)
	}
	if _, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-2"); err != nil {
		t.Fatalf("expected released seat to be holdable, got %v", err)
	}
	if err := f.alloc.ReleaseHold(ctx, tok.Value); err != model.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken on double release, got %v", err)
	}
}

// The end-to-end journey: hold, losing contender, confirm, cancel, rebook.
func TestBookingLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, futureDeparture())

	tokU1, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-1")
	if err != nil {
		t.Fatalf("user-1 hold: %v", err)
	}
	if _, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-2"); err != model.ErrSeatUnavailable {
		t.Fatalf("expected user-2 to lose the seat, got %v", err)
	}

	b1, err := f.alloc.ConfirmBooking(ctx, tokU1.Value, "k1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b1.SeatNumber != "A1" || b1.Status != model.BookingStatusBooked {
		t.Fatalf("unexpected booking: %+v", b1)
	}

	cancelled, err := f.cancel.CancelBooking(ctx, b1.ID, "user-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	snap, _ := f.inventory.Snapshot("route-1")
	if snap[0].State != model.SeatAvailable {
		t.Fatalf("expected A1 available after cancellation, got %+v", snap[0])
	}

	if _, err := f.alloc.HoldSeat(ctx, "route-1", "A1", "user-2"); err != nil {
		t.Fatalf("expected user-2 to hold A1 after cancellation, got %v", err)
	}
}
