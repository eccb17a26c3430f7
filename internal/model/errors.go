// Package model defines the domain types and sentinel errors shared by the
// booking engine's packages. Handlers compare against the sentinels with
// errors.Is and translate them into HTTP responses, so the engine can tell
// "someone else took this seat" apart from "your hold timed out".
package model

import "errors"

var (
	// ErrRouteNotFound is returned when the referenced route is not in the
	// catalog.
	ErrRouteNotFound = errors.New("route not found")

	// ErrSeatNotFound is returned when the seat number does not exist on an
	// otherwise valid route.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatUnavailable is returned by a hold attempt on a seat that is
	// currently held or booked. The caller is expected to pick another seat,
	// not retry.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrHoldExpired is returned by confirm when the hold's lease lapsed
	// before the commit. The seat is reclaimed, never resurrected.
	ErrHoldExpired = errors.New("hold expired")

	// ErrInvalidToken is returned for an unknown or already-consumed hold
	// token.
	ErrInvalidToken = errors.New("invalid hold token")

	// ErrNotBooked is returned when releasing a booked seat that is not in
	// the booked state.
	ErrNotBooked = errors.New("seat not booked")

	// ErrBookingNotFound is returned when the booking identifier is unknown
	// to the ledger.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotBookingHolder is returned when a cancellation is requested by
	// someone other than the booking's holder.
	ErrNotBookingHolder = errors.New("requester does not own booking")

	// ErrAlreadyCancelled is returned when cancelling a booking that is
	// already cancelled. A cancelled booking never reactivates.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrDepartureTimePassed is returned when cancelling a booking on a
	// route whose departure is at or before the current time.
	ErrDepartureTimePassed = errors.New("departure time passed")

	// ErrIdempotencyKeyRequired is returned by confirm when the caller did
	// not supply an idempotency key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")

	// ErrRouteExists is returned when registering a route identifier that is
	// already present; the seat pool of a route is fixed at creation.
	ErrRouteExists = errors.New("route already registered")
)
