package model

import "time"

// RouteKind identifies the vehicle type operating a route.
type RouteKind string

const (
	RouteKindTrain RouteKind = "train"
	RouteKindBus   RouteKind = "bus"
)

// Route describes a single scheduled journey with a fixed pool of seats.
// Routes are supplied at catalog-load time and are immutable afterwards:
// fare or schedule changes never flow through the booking engine.
//
// Fields:
//
//	ID            – route identifier.
//	Kind          – train or bus.
//	Origin        – departure city.
//	Destination   – arrival city.
//	DepartureTime – scheduled departure (UTC).
//	ArrivalTime   – scheduled arrival (UTC).
//	VehicleNumber – operator's vehicle designation (e.g. "RAJ-2024").
//	SeatsTotal    – size of the fixed seat pool.
//	PriceCents    – flat price per seat in minor currency units.
type Route struct {
	ID            string
	Kind          RouteKind
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	VehicleNumber string
	SeatsTotal    int
	PriceCents    uint32
}
