// This file contains data access for movie sessions.  The listing query
// joins movies and halls so a single round trip yields everything the list
// payload needs, including the remaining ticket count derived from hall
// capacity minus sold tickets.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrSessionNotFound is returned when a movie session cannot be found.
var ErrSessionNotFound = errors.New("movie session not found")

// SessionFilter narrows down the session listing.  Date restricts show_time
// to one calendar day (UTC); MovieID restricts to one movie.  Zero values
// mean "no constraint".
type SessionFilter struct {
	Date    *time.Time
	MovieID uint64
}

// SessionListItem is the flattened row returned by List: session fields plus
// the joined movie/hall attributes the catalog list payload exposes.
type SessionListItem struct {
	ID               uint64
	ShowTime         time.Time
	MovieID          uint64
	MovieTitle       string
	MovieImage       *string
	HallID           uint64
	HallName         string
	HallCapacity     uint32
	TicketsAvailable uint32
}

// SeatRef identifies one sold seat in a session detail response.
type SeatRef struct {
	Row  uint32
	Seat uint32
}

// SessionRepo encapsulates all database queries related to movie sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the provided DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a session after verifying the referenced movie and hall
// exist.  Missing references surface as ErrMovieNotFound / ErrHallNotFound.
func (r *SessionRepo) Create(ctx context.Context, s *model.MovieSession) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id = ?", s.MovieID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM cinema_halls WHERE id = ?", s.HallID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHallNotFound
		}
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movie_sessions (movie_id, hall_id, show_time) VALUES (?, ?, ?)",
		s.MovieID, s.HallID, s.ShowTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a raw session row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.MovieSession, error) {
	var s model.MovieSession
	err := r.db.QueryRowContext(ctx,
		`SELECT id, movie_id, hall_id, show_time, created_at, updated_at
		 FROM movie_sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.MovieID, &s.HallID, &s.ShowTime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns session list items matching the filter, ordered by show time.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]*SessionListItem, error) {
	q := `SELECT s.id, s.show_time, m.id, m.title, m.image_path,
	             h.id, h.name, h.seat_rows * h.seats_in_row,
	             h.seat_rows * h.seats_in_row - COUNT(t.id)
	      FROM movie_sessions s
	      JOIN movies m ON m.id = s.movie_id
	      JOIN cinema_halls h ON h.id = s.hall_id
	      LEFT JOIN tickets t ON t.session_id = s.id`
	var (
		where []string
		args  []interface{}
	)
	if f.Date != nil {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		where = append(where, "s.show_time >= ? AND s.show_time < ?")
		args = append(args, day, day.Add(24*time.Hour))
	}
	if f.MovieID != 0 {
		where = append(where, "s.movie_id = ?")
		args = append(args, f.MovieID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " GROUP BY s.id, s.show_time, m.id, m.title, m.image_path, h.id, h.name, h.seat_rows, h.seats_in_row"
	q += " ORDER BY s.show_time, s.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SessionListItem
	for rows.Next() {
		it := new(SessionListItem)
		if err := rows.Scan(&it.ID, &it.ShowTime, &it.MovieID, &it.MovieTitle, &it.MovieImage,
			&it.HallID, &it.HallName, &it.HallCapacity, &it.TicketsAvailable); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TakenSeats lists the sold (row, seat) pairs for a session, for the
// session detail payload.
func (r *SessionRepo) TakenSeats(ctx context.Context, sessionID uint64) ([]SeatRef, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT row_no, seat_no FROM tickets WHERE session_id = ? ORDER BY row_no, seat_no",
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []SeatRef{}
	for rows.Next() {
		var s SeatRef
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// Update moves a session to a new movie, hall or show time.
func (r *SessionRepo) Update(ctx context.Context, s *model.MovieSession) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movie_sessions SET movie_id = ?, hall_id = ?, show_time = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		s.MovieID, s.HallID, s.ShowTime.UTC(), s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if scanErr := r.db.QueryRowContext(ctx, "SELECT 1 FROM movie_sessions WHERE id = ?", s.ID).Scan(&one); scanErr != nil {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes a session.  Sessions with sold tickets cannot be deleted
// and yield ErrConflict.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	var sold int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE session_id = ?", id).Scan(&sold); err != nil {
		return err
	}
	if sold > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM movie_sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
