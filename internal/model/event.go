package model

import "time"

// Event is a bookable happening with a fixed number of seats.  Seats are
// created together with the event and labelled Seat-1 .. Seat-N.
type Event struct {
	ID         uint64    `json:"id"`          // events.id
	Name       string    `json:"name"`        // events.name
	Date       time.Time `json:"date"`        // events.date
	Location   string    `json:"location"`    // events.location
	Price      float64   `json:"price"`       // events.price
	TotalSeats int       `json:"total_seats"` // events.total_seats
	Category   string    `json:"category"`    // events.category
	CreatedAt  time.Time `json:"created_at"`  // events.created_at
}

// EventFilter narrows an event listing.  Empty fields are ignored.  Date
// must be YYYY-MM-DD when set.
type EventFilter struct {
	Name     string
	Location string
	Category string
	Date     string
}
