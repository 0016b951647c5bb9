package model

import "time"

// MovieSession schedules a movie screening in a hall at a specific time.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  HallID    – hall hosting the screening.
//  ShowTime  – when the screening starts.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type MovieSession struct {
	ID        uint64    // movie_sessions.id
	MovieID   uint64    // movie_sessions.movie_id
	HallID    uint64    // movie_sessions.hall_id
	ShowTime  time.Time // movie_sessions.show_time
	CreatedAt time.Time // movie_sessions.created_at
	UpdatedAt time.Time // movie_sessions.updated_at
}
