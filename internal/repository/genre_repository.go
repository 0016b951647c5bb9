// This file defines repository methods for genres.  Genres are the simplest
// catalog aggregate: a unique name per row, referenced by movies through the
// movie_genres join table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrGenreNotFound is returned when a genre cannot be found in the DB.
var ErrGenreNotFound = errors.New("genre not found")

// GenreRepo encapsulates all database queries related to genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the provided DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts a new genre.  On success the ID field is populated with
// the auto-generated value.  Duplicate names map to ErrConflict.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", g.Name)
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
	g.ID = uint64(id)
	return nil
}

// GetByID fetches a genre by its ID, returning ErrGenreNotFound when no
// row exists.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id).
		Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by id.
func (r *GenreRepo) List(ctx context.Context) ([]*model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Genre
	for rows.Next() {
		g := new(model.Genre)
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames a genre.  sql.ErrNoRows is returned when no row was
// affected (not found).
func (r *GenreRepo) Update(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a genre along with its movie links.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM movie_genres WHERE genre_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return err
	}
	return nil
}
