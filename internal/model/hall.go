package model

import "time"

// CinemaHall describes a screening room and its rectangular seat grid.
// Capacity is derived, not stored.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – unique hall name.
//  SeatRows   – number of seating rows.
//  SeatsInRow – number of seats per row.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type CinemaHall struct {
	ID         uint64    // cinema_halls.id
	Name       string    // cinema_halls.name
	SeatRows   uint32    // cinema_halls.seat_rows
	SeatsInRow uint32    // cinema_halls.seats_in_row
	CreatedAt  time.Time // cinema_halls.created_at
	UpdatedAt  time.Time // cinema_halls.updated_at
}

// Capacity returns the total number of seats in the hall.
func (h CinemaHall) Capacity() uint32 {
	return h.SeatRows * h.SeatsInRow
}
