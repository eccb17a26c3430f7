// Package inventory owns the per-route seat pools and is the only writer of
// seat state. Holds, commits and releases all funnel through the per-seat
// transitions defined here; the allocation and cancellation services never
// mutate seat state themselves.
package inventory

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/model"
)

// seatCell is the mutable state of a single seat. Every cell carries its own
// mutex, so transitions on one seat never block transitions on another. No
// operation performs I/O or calls into another component while a cell lock
// is held.
type seatCell struct {
	mu        sync.Mutex
	state     model.SeatState
	holder    string
	token     string
	expiresAt time.Time
	bookingID string
}

// reset returns the cell to the available state and clears all lease and
// booking fields.
func (c *seatCell) reset() {
	c.state = model.SeatAvailable
	c.holder = ""
	c.token = ""
	c.expiresAt = time.Time{}
	c.bookingID = ""
}

// routeArena is the fixed seat set of one route. The seat map and the
// display order are built once in AddRoute and never modified, so reading
// them requires no lock; only the cells they point at are mutable.
type routeArena struct {
	seats map[string]*seatCell
	order []string
}

// seatRef locates a cell from a hold token.
type seatRef struct {
	routeID    string
	seatNumber string
}

// SeatInventory arbitrates concurrent seat claims. Each mutating operation
// on a (routeID, seatNumber) pair is a compare-and-set under that seat's own
// lock, making the transition sequence per seat totally ordered. There is no
// inventory-wide lock on the hot path: the routes map is guarded only for
// registration, and token resolution goes through a sync.Map.
type SeatInventory struct {
	mu     sync.RWMutex // guards the routes map, never seat state
	routes map[string]*routeArena
	tokens sync.Map // token value -> seatRef
	clk    clock.Clock
}

// New returns an empty inventory using clk for expiry decisions.
func New(clk clock.Clock) *SeatInventory {
	return &SeatInventory{
		routes: make(map[string]*routeArena),
		clk:    clk,
	}
}

// AddRoute registers the fixed seat set for a route. Seat numbers are
// deduplicated and stored in display order (row letters lexically, seat
// numbers within a row numerically). The pool never grows or shrinks after
// registration; re-registering a route returns ErrRouteExists.
func (inv *SeatInventory) AddRoute(routeID string, seatNumbers []string) error {
	arena := &routeArena{seats: make(map[string]*seatCell, len(seatNumbers))}
	for _, sn := range seatNumbers {
		if sn == "" {
			continue
		}
		if _, ok := arena.seats[sn]; ok {
			continue
		}
		cell := &seatCell{}
		cell.reset()
		arena.seats[sn] = cell
		arena.order = append(arena.order, sn)
	}
	sortSeatNumbers(arena.order)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, ok := inv.routes[routeID]; ok {
		return model.ErrRouteExists
	}
	inv.routes[routeID] = arena
	return nil
}

// Snapshot returns a consistent point-in-time copy of every seat on the
// route, ordered by seat number. Each seat is copied under its own lock, so
// the view never contains a half-updated seat. Snapshot has no side effects
// and is safe under concurrent mutation.
func (inv *SeatInventory) Snapshot(routeID string) ([]model.Seat, error) {
	arena, err := inv.arena(routeID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Seat, 0, len(arena.order))
	for _, sn := range arena.order {
		cell := arena.seats[sn]
		cell.mu.Lock()
		seat := model.Seat{
			RouteID:    routeID,
			SeatNumber: sn,
			State:      cell.state,
			Holder:     cell.holder,
			HoldExpiry: cell.expiresAt,
			BookingID:  cell.bookingID,
		}
		cell.mu.Unlock()
		out = append(out, seat)
	}
	return out, nil
}

// TryHold attempts to lease a seat for the holder. It succeeds only if the
// seat is available, transitioning it to held until now+ttl, and fails
// immediately with ErrSeatUnavailable otherwise; there is no retry or
// queueing. Competing callers on the same seat produce exactly one winner.
// A hold whose lease already lapsed is reclaimed on the spot, so a new
// holder never waits for the sweeper.
func (inv *SeatInventory) TryHold(routeID, seatNumber, holder string, ttl time.Duration) (model.HoldToken, error) {
	cell, err := inv.cell(routeID, seatNumber)
	if err != nil {
		return model.HoldToken{}, err
	}
	token, err := randomToken(16)
	if err != nil {
		return model.HoldToken{}, err
	}
	now := inv.clk.Now()

	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.state == model.SeatHeld && !cell.expiresAt.After(now) {
		inv.tokens.Delete(cell.token)
		cell.reset()
	}
	if cell.state != model.SeatAvailable {
		return model.HoldToken{}, model.ErrSeatUnavailable
	}
	cell.state = model.SeatHeld
	cell.holder = holder
	cell.token = token
	cell.expiresAt = now.Add(ttl)
	inv.tokens.Store(token, seatRef{routeID: routeID, seatNumber: seatNumber})

	return model.HoldToken{
		Value:      token,
		RouteID:    routeID,
		SeatNumber: seatNumber,
		Holder:     holder,
		ExpiresAt:  cell.expiresAt,
	}, nil
}

// Committed reports the seat a successful Commit transitioned, so the
// caller can build the ledger record without re-reading seat state.
type Committed struct {
	RouteID    string
	SeatNumber string
	Holder     string
}

// Commit converts a held seat into a booked one carrying bookingID. It
// succeeds only while the seat is still held under exactly this token and
// the lease has not lapsed. A lapsed hold is reclaimed and reported as
// ErrHoldExpired; a booked seat never comes into existence past its hold's
// expiry. The token is consumed either way.
func (inv *SeatInventory) Commit(tokenValue, bookingID string) (Committed, error) {
	cell, ref, err := inv.resolve(tokenValue)
	if err != nil {
		return Committed{}, err
	}
	now := inv.clk.Now()

	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.state != model.SeatHeld || cell.token != tokenValue {
		return Committed{}, model.ErrInvalidToken
	}
	inv.tokens.Delete(tokenValue)
	if !cell.expiresAt.After(now) {
		cell.reset()
		return Committed{}, model.ErrHoldExpired
	}
	holder := cell.holder
	cell.state = model.SeatBooked
	cell.holder = ""
	cell.token = ""
	cell.expiresAt = time.Time{}
	cell.bookingID = bookingID
	return Committed{RouteID: ref.routeID, SeatNumber: ref.seatNumber, Holder: holder}, nil
}

// Release returns a held seat to available, invalidating the token. It is
// used both for explicit release of an unconfirmed hold and by the sweeper
// when a lease lapses. Releasing an unknown or already-consumed token
// returns ErrInvalidToken.
func (inv *SeatInventory) Release(tokenValue string) error {
	cell, _, err := inv.resolve(tokenValue)
	if err != nil {
		return err
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.state != model.SeatHeld || cell.token != tokenValue {
		return model.ErrInvalidToken
	}
	inv.tokens.Delete(tokenValue)
	cell.reset()
	return nil
}

// ReleaseBooked returns a booked seat to available. It is called by the
// cancellation flow after the ledger has recorded the cancellation; calling
// it on a seat that is not booked returns ErrNotBooked.
func (inv *SeatInventory) ReleaseBooked(routeID, seatNumber string) error {
	cell, err := inv.cell(routeID, seatNumber)
	if err != nil {
		return err
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.state != model.SeatBooked {
		return model.ErrNotBooked
	}
	cell.reset()
	return nil
}

// RestoreBooked marks a seat as booked without going through a hold. It is
// used once at startup to replay active ledger entries into the seat arena;
// a seat that is not available at that point returns ErrSeatUnavailable.
func (inv *SeatInventory) RestoreBooked(routeID, seatNumber, bookingID string) error {
	cell, err := inv.cell(routeID, seatNumber)
	if err != nil {
		return err
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.state != model.SeatAvailable {
		return model.ErrSeatUnavailable
	}
	cell.state = model.SeatBooked
	cell.bookingID = bookingID
	return nil
}

// ExpiredHolds scans every seat and returns the tokens of holds whose lease
// has lapsed. The sweeper releases each returned token individually; a
// token that loses a race with a concurrent transition simply fails its
// release and is skipped.
func (inv *SeatInventory) ExpiredHolds() []model.HoldToken {
	now := inv.clk.Now()

	inv.mu.RLock()
	arenas := make([]struct {
		routeID string
		arena   *routeArena
	}, 0, len(inv.routes))
	for id, a := range inv.routes {
		arenas = append(arenas, struct {
			routeID string
			arena   *routeArena
		}{id, a})
	}
	inv.mu.RUnlock()

	var expired []model.HoldToken
	for _, entry := range arenas {
		for _, sn := range entry.arena.order {
			cell := entry.arena.seats[sn]
			cell.mu.Lock()
			if cell.state == model.SeatHeld && !cell.expiresAt.After(now) {
				expired = append(expired, model.HoldToken{
					Value:      cell.token,
					RouteID:    entry.routeID,
					SeatNumber: sn,
					Holder:     cell.holder,
					ExpiresAt:  cell.expiresAt,
				})
			}
			cell.mu.Unlock()
		}
	}
	return expired
}

// arena returns the seat arena of a route or ErrRouteNotFound.
func (inv *SeatInventory) arena(routeID string) (*routeArena, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	arena, ok := inv.routes[routeID]
	if !ok {
		return nil, model.ErrRouteNotFound
	}
	return arena, nil
}

// cell returns the seat cell of a (routeID, seatNumber) pair.
func (inv *SeatInventory) cell(routeID, seatNumber string) (*seatCell, error) {
	arena, err := inv.arena(routeID)
	if err != nil {
		return nil, err
	}
	cell, ok := arena.seats[seatNumber]
	if !ok {
		return nil, model.ErrSeatNotFound
	}
	return cell, nil
}

// resolve maps a token value to its seat cell. An unknown token means it
// was never issued or has already been consumed.
func (inv *SeatInventory) resolve(tokenValue string) (*seatCell, seatRef, error) {
	v, ok := inv.tokens.Load(tokenValue)
	if !ok {
		return nil, seatRef{}, model.ErrInvalidToken
	}
	ref := v.(seatRef)
	cell, err := inv.cell(ref.routeID, ref.seatNumber)
	if err != nil {
		return nil, seatRef{}, model.ErrInvalidToken
	}
	return cell, ref, nil
}

// sortSeatNumbers orders seat numbers lexically by their row prefix and
// numerically by their trailing number, so A2 sorts before A10 and both
// before B1.
func sortSeatNumbers(numbers []string) {
	sort.Slice(numbers, func(i, j int) bool {
		ri, ni := splitSeatNumber(numbers[i])
		rj, nj := splitSeatNumber(numbers[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return numbers[i] < numbers[j]
	})
}

// splitSeatNumber separates a seat number into its leading row label and
// trailing numeric part. "A12" yields ("A", 12); a seat number without a
// numeric tail yields 0.
func splitSeatNumber(s string) (string, int) {
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	n, _ := strconv.Atoi(s[i:])
	return s[:i], n
}

// randomToken returns a hex string generated from n bytes of secure random
// data. Hold tokens never repeat in practice; resolution still verifies the
// token against the cell before acting.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
