package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrActorNotFound is returned when an actor cannot be found in the DB.
var ErrActorNotFound = errors.New("actor not found")

// ActorRepo encapsulates all database queries related to actors.
type ActorRepo struct {
	db *sql.DB
}

// NewActorRepo constructs an ActorRepo with the provided DB handle.
func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

// Create inserts a new actor and populates its ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO actors (first_name, last_name) VALUES (?, ?)",
		a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an actor by ID, returning ErrActorNotFound when missing.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	err := r.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name FROM actors WHERE id = ?", id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns all actors ordered by id.
func (r *ActorRepo) List(ctx context.Context) ([]*model.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM actors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Actor
	for rows.Next() {
		a := new(model.Actor)
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces both name fields.  sql.ErrNoRows when nothing matched.
func (r *ActorRepo) Update(ctx context.Context, id uint64, first, last string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?",
		first, last, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an actor along with its movie links.
func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err = tx.ExecContext(ctx, "DELETE FROM movie_actors WHERE actor_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return err
	}
	return nil
}
