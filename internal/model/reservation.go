package model

import "time"

// Reservation records that a user holds a seat at an event.  There is at
// most one reservation per seat, enforced by a unique key on seat_id.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	EventID   uint64    `json:"event_id"`   // reservations.event_id
	SeatID    uint64    `json:"seat_id"`    // reservations.seat_id
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
}
