// Package ledger stores the authoritative, append-only record of bookings.
// Records are created once, may transition booked -> cancelled exactly once,
// and are never deleted: the ledger is the audit trail the rest of the
// system trusts over seat state.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tripworks/seatline/internal/model"
)

// Store is the booking ledger contract. Append is the only way records come
// into existence and MarkCancelled the only mutation permitted afterwards.
type Store interface {
	// Append inserts a booking. If a record already exists for the booking's
	// idempotency key, the prior record is returned unchanged and nothing is
	// appended.
	Append(ctx context.Context, booking model.Booking) (model.Booking, error)

	// Find returns the booking with the given identifier or
	// ErrBookingNotFound.
	Find(ctx context.Context, bookingID string) (model.Booking, error)

	// FindByIdempotencyKey returns the booking created under the key, or nil
	// when the key has never been used.
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error)

	// ListByHolder returns the holder's bookings ordered by creation time,
	// newest first.
	ListByHolder(ctx context.Context, holder string) ([]model.Booking, error)

	// ListActive returns every booking still in the booked status. Used at
	// startup to replay seat state from the ledger.
	ListActive(ctx context.Context) ([]model.Booking, error)

	// MarkCancelled sets the booking's status to cancelled. It fails with
	// ErrAlreadyCancelled when the booking is already cancelled and
	// ErrBookingNotFound when the identifier is unknown.
	MarkCancelled(ctx context.Context, bookingID string, cancelledAt time.Time) error
}

// MemoryStore is an in-process Store. All operations run under a single
// mutex; ledger writes are short and never overlap a seat lock, so this is
// not on the seat contention path.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]*model.Booking
	byKey map[string]*model.Booking
	order []string // booking IDs in append order
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*model.Booking),
		byKey: make(map[string]*model.Booking),
	}
}

func (s *MemoryStore) Append(ctx context.Context, booking model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prior, ok := s.byKey[booking.IdempotencyKey]; ok {
		return *prior, nil
	}
	rec := booking
	s.byID[rec.ID] = &rec
	s.byKey[rec.IdempotencyKey] = &rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

func (s *MemoryStore) Find(ctx context.Context, bookingID string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[bookingID]
	if !ok {
		return model.Booking{}, model.ErrBookingNotFound
	}
	return *rec, nil
}

func (s *MemoryStore) FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (s *MemoryStore) ListByHolder(ctx context.Context, holder string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	// Walk append order backwards so equal timestamps keep newest-first.
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.byID[s.order[i]]
		if rec.Holder == holder {
			out = append(out, *rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListActive(ctx context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, id := range s.order {
		rec := s.byID[id]
		if rec.Status == model.BookingStatusBooked {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkCancelled(ctx context.Context, bookingID string, cancelledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[bookingID]
	if !ok {
		return model.ErrBookingNotFound
	}
	if rec.Status == model.BookingStatusCancelled {
		return model.ErrAlreadyCancelled
	}
	at := cancelledAt
	rec.Status = model.BookingStatusCancelled
	rec.CancelledAt = &at
	return nil
}
