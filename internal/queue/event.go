// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// SeatReservedQueue is the durable queue carrying SeatReservedEvent.
const SeatReservedQueue = "seat.reserved"

// SeatReservedEvent is published after a reservation commits.  It carries
// enough to log or notify without reading the primary database.
type SeatReservedEvent struct {
	ReservationID uint64    `json:"reservation_id"`
	UserID        uint64    `json:"user_id"`
	EventID       uint64    `json:"event_id"`
	SeatID        uint64    `json:"seat_id"`
	SeatNumber    string    `json:"seat_number"`
	ReservedAt    time.Time `json:"reserved_at"`
}
