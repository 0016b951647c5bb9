package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrHallNotFound is returned when a cinema hall cannot be found in the DB.
var ErrHallNotFound = errors.New("cinema hall not found")

// HallRepo encapsulates all database queries related to cinema halls.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the provided DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall and populates its ID.  Duplicate names map to
// ErrConflict.
func (r *HallRepo) Create(ctx context.Context, h *model.CinemaHall) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cinema_halls (name, seat_rows, seats_in_row) VALUES (?, ?, ?)",
		h.Name, h.SeatRows, h.SeatsInRow)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID fetches a hall by ID, returning ErrHallNotFound when missing.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.CinemaHall, error) {
	var h model.CinemaHall
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, seat_rows, seats_in_row, created_at, updated_at
		 FROM cinema_halls WHERE id = ?`, id).
		Scan(&h.ID, &h.Name, &h.SeatRows, &h.SeatsInRow, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]*model.CinemaHall, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, seat_rows, seats_in_row, created_at, updated_at FROM cinema_halls ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CinemaHall
	for rows.Next() {
		h := new(model.CinemaHall)
		if err := rows.Scan(&h.ID, &h.Name, &h.SeatRows, &h.SeatsInRow, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites name and seat grid.  sql.ErrNoRows when nothing matched.
func (r *HallRepo) Update(ctx context.Context, h *model.CinemaHall) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cinema_halls SET name = ?, seat_rows = ?, seats_in_row = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		h.Name, h.SeatRows, h.SeatsInRow, h.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if scanErr := r.db.QueryRowContext(ctx, "SELECT 1 FROM cinema_halls WHERE id = ?", h.ID).Scan(&one); scanErr != nil {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes a hall.  Halls hosting sessions cannot be deleted and
// yield ErrConflict.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	var sessions int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movie_sessions WHERE hall_id = ?", id).Scan(&sessions); err != nil {
		return err
	}
	if sessions > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM cinema_halls WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
