package model

// Seat is a single reservable place at an event.  ReservedBy is nil while
// the seat is free; once set it never changes except through an
// administrative release.
type Seat struct {
	ID         uint64  `json:"id"`          // seats.id
	EventID    uint64  `json:"event_id"`    // seats.event_id
	SeatNumber string  `json:"seat_number"` // seats.seat_number
	ReservedBy *uint64 `json:"reserved_by"` // seats.reserved_by (nullable)
}

// Reserved reports whether the seat has an owner.
func (s Seat) Reserved() bool { return s.ReservedBy != nil }
