// This file contains data access for movies, including the filtered listing
// used by the catalog API.  Filters mirror the query parameters accepted by
// GET /v1/movies: a case-insensitive title substring plus sets of genre and
// actor IDs that are matched through the join tables.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieFilter narrows down the movie listing.  Zero values mean "no
// constraint".  A movie matches when its title contains Title and it is
// linked to at least one of GenreIDs and one of ActorIDs.
type MovieFilter struct {
	Title    string
	GenreIDs []uint64
	ActorIDs []uint64
}

// MovieRepo encapsulates all database queries related to movies and their
// genre/actor relations.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a movie together with its genre and actor links inside a
// transaction.  The movie's ID field is populated on success.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
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

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO movies (title, description, duration_min) VALUES (?, ?, ?)",
		m.Title, m.Description, m.DurationMin)
	if err != nil {
		return err
	}
	var id int64
	if id, err = res.LastInsertId(); err != nil {
		return err
	}
	m.ID = uint64(id)

	if err = replaceLinksTx(ctx, tx, "movie_genres", "genre_id", m.ID, m.GenreIDs); err != nil {
		return err
	}
	if err = replaceLinksTx(ctx, tx, "movie_actors", "actor_id", m.ID, m.ActorIDs); err != nil {
		return err
	}
	return nil
}

// GetByID loads one movie with its genre and actor IDs.  Returns
// ErrMovieNotFound when the row does not exist.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, duration_min, image_path, created_at, updated_at
		 FROM movies WHERE id = ?`, id).
		Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin, &m.ImagePath, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	if m.GenreIDs, err = r.linkedIDs(ctx, "movie_genres", "genre_id", m.ID); err != nil {
		return nil, err
	}
	if m.ActorIDs, err = r.linkedIDs(ctx, "movie_actors", "actor_id", m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns movies matching the filter, ordered by id, with relations
// populated.  The WHERE clause is assembled dynamically from the filter so
// unfiltered listings stay a plain table scan.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]*model.Movie, error) {
	q := `SELECT DISTINCT m.id, m.title, m.description, m.duration_min, m.image_path,
	             m.created_at, m.updated_at
	      FROM movies m`
	var (
		where []string
		args  []interface{}
	)
	if len(f.GenreIDs) > 0 {
		q += " JOIN movie_genres mg ON mg.movie_id = m.id"
		where = append(where, "mg.genre_id IN ("+placeholders(len(f.GenreIDs))+")")
		for _, id := range f.GenreIDs {
			args = append(args, id)
		}
	}
	if len(f.ActorIDs) > 0 {
		q += " JOIN movie_actors ma ON ma.movie_id = m.id"
		where = append(where, "ma.actor_id IN ("+placeholders(len(f.ActorIDs))+")")
		for _, id := range f.ActorIDs {
			args = append(args, id)
		}
	}
	if f.Title != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Title)+"%")
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY m.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Movie
	for rows.Next() {
		m := new(model.Movie)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin,
			&m.ImagePath, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range out {
		if m.GenreIDs, err = r.linkedIDs(ctx, "movie_genres", "genre_id", m.ID); err != nil {
			return nil, err
		}
		if m.ActorIDs, err = r.linkedIDs(ctx, "movie_actors", "actor_id", m.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update rewrites the movie row and replaces its relation links.  Returns
// sql.ErrNoRows when the movie does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
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

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`UPDATE movies SET title = ?, description = ?, duration_min = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		m.Title, m.Description, m.DurationMin, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is zero both for a missing row and for a no-op update,
		// so confirm existence before reporting not found.
		var one int
		if scanErr := tx.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id = ?", m.ID).Scan(&one); scanErr != nil {
			err = sql.ErrNoRows
			return err
		}
	}
	if err = replaceLinksTx(ctx, tx, "movie_genres", "genre_id", m.ID, m.GenreIDs); err != nil {
		return err
	}
	if err = replaceLinksTx(ctx, tx, "movie_actors", "actor_id", m.ID, m.ActorIDs); err != nil {
		return err
	}
	return nil
}

// SetImage records the stored poster path for a movie.
func (r *MovieRepo) SetImage(ctx context.Context, id uint64, path string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE movies SET image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		path, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a movie and its relation links.  Movies with scheduled
// sessions cannot be deleted and yield ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
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

	var sessions int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movie_sessions WHERE movie_id = ?", id).Scan(&sessions); err != nil {
		return err
	}
	if sessions > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM movie_genres WHERE movie_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM movie_actors WHERE movie_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return err
	}
	return nil
}

// linkedIDs reads the related IDs for a movie from a join table.
func (r *MovieRepo) linkedIDs(ctx context.Context, table, column string, movieID uint64) ([]uint64, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE movie_id = ? ORDER BY %s", column, table, column)
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// replaceLinksTx deletes and re-inserts the join rows for one movie.
func replaceLinksTx(ctx context.Context, tx *sql.Tx, table, column string, movieID uint64, ids []uint64) error {
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE movie_id = ?", table), movieID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (movie_id, %s) VALUES (?, ?)", table, column),
			movieID, id); err != nil {
			return err
		}
	}
	return nil
}

// placeholders returns n comma-separated "?" markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
