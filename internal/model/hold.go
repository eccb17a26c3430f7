package model

import "time"

// HoldToken correlates a successful hold with its later confirm or release
// call. Value is opaque to clients; the remaining fields describe the lease
// so callers can display what was reserved and when it lapses. A token is
// consumed exactly once, by commit or release.
type HoldToken struct {
	Value      string
	RouteID    string
	SeatNumber string
	Holder     string
	ExpiresAt  time.Time
}
