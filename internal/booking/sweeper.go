package booking

import (
	"context"
	"log"
	"time"

	"github.com/tripworks/seatline/internal/inventory"
)

// DefaultSweepInterval is how often the sweeper scans for lapsed holds.
const DefaultSweepInterval = 30 * time.Second

// ExpirySweeper reclaims seats whose holds have lapsed. It is purely a
// reclamation optimization: commit re-checks expiry on its own, so nothing
// depends on the sweeper's timeliness.
type ExpirySweeper struct {
	inventory *inventory.SeatInventory
	interval  time.Duration
}

// NewExpirySweeper returns a sweeper scanning at the given interval; a
// non-positive interval falls back to DefaultSweepInterval.
func NewExpirySweeper(inv *inventory.SeatInventory, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpirySweeper{inventory: inv, interval: interval}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("sweeper: released %d expired holds", n)
			}
		}
	}
}

// Sweep releases every hold whose lease has lapsed and reports how many
// seats it reclaimed. A hold that was consumed or taken over between the
// scan and the release is skipped.
func (s *ExpirySweeper) Sweep() int {
	released := 0
	for _, tok := range s.inventory.ExpiredHolds() {
		if err := s.inventory.Release(tok.Value); err == nil {
			released++
		}
	}
	return released
}
