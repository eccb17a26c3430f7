// Package queue defines the message payloads exchanged over the broker and
// the background consumer that records them.
package queue

// BookingConfirmedEvent is published after a confirm produced a ledger
// entry. It carries enough context for downstream consumers (ticket
// rendering, notifications, analytics) to act without querying the engine.
type BookingConfirmedEvent struct {
	BookingID     string `json:"booking_id"`
	RouteID       string `json:"route_id"`
	Holder        string `json:"holder"`
	SeatNumber    string `json:"seat_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	VehicleNumber string `json:"vehicle_number"`
	DepartureTime string `json:"departure_time"`
	PriceCents    uint32 `json:"price_cents"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation was recorded in
// the ledger.
type BookingCancelledEvent struct {
	BookingID   string `json:"booking_id"`
	RouteID     string `json:"route_id"`
	Holder      string `json:"holder"`
	SeatNumber  string `json:"seat_number"`
	CancelledAt string `json:"cancelled_at"`
}
