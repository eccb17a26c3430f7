package model

import "time"

// BookingStatus is the lifecycle status of a booking. A booking is created
// as booked and may transition to cancelled exactly once; it is never
// deleted, the ledger is the audit trail.
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is one confirmed seat purchase. PriceCents is snapshotted at
// confirm time and never changes afterwards, independent of later catalog
// price changes. IdempotencyKey ties the record to the confirm request that
// created it so retries can be answered with the original record.
type Booking struct {
	ID             string
	RouteID        string
	SeatNumber     string
	Holder         string
	PriceCents     uint32
	Status         BookingStatus
	IdempotencyKey string
	CreatedAt      time.Time
	CancelledAt    *time.Time
}
