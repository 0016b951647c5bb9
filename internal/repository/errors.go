// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios: ErrConflict signals that an
// operation cannot proceed because of existing dependent records (e.g.
// deleting a movie that still has scheduled sessions), ErrSeatTaken that a
// requested seat is already sold for a session.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrSeatTaken is returned when a ticket cannot be created because the
// (session, row, seat) combination is already sold.  Handlers translate
// this into HTTP 409.
var ErrSeatTaken = errors.New("seat already taken")
