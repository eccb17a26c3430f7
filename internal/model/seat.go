package model

import "time"

// SeatState is the lifecycle state of a single seat on a route. A seat is
// in exactly one state at any instant and only the inventory transitions it.
type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatHeld      SeatState = "held"
	SeatBooked    SeatState = "booked"
)

// Seat is a point-in-time view of one seat. The (RouteID, SeatNumber) pair
// is the seat's identity; the remaining fields are only meaningful for the
// state the seat was observed in.
type Seat struct {
	RouteID    string
	SeatNumber string
	State      SeatState
	Holder     string    // holder identity while held
	HoldExpiry time.Time // lease expiry while held
	BookingID  string    // ledger reference while booked
}
