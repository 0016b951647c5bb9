// This file contains data access for orders and tickets.  Creating an order
// is the one multi-row write in the booking flow and runs inside a single
// transaction: the order row, then every ticket, each validated against the
// hall grid of its session.  A duplicate (session, row, seat) insert trips
// the unique key and surfaces as ErrSeatTaken.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking-api/internal/model"
)

// ErrOrderNotFound is returned when an order cannot be found for the user.
var ErrOrderNotFound = errors.New("order not found")

// ErrSeatOutOfRange is returned when a ticket references a row or seat
// outside the hall's grid.
var ErrSeatOutOfRange = errors.New("seat out of range")

// OrderRepo encapsulates all database queries related to orders and tickets.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo with the provided DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateWithTickets creates an order for the user with the given tickets.
// Every ticket's session must exist (ErrSessionNotFound) and its row/seat
// must fit the session hall's grid (ErrSeatOutOfRange, wrapped with the
// offending seat).  The whole write is atomic.
func (r *OrderRepo) CreateWithTickets(ctx context.Context, userID uint64, tickets []model.Ticket) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "INSERT INTO orders (user_id) VALUES (?)", userID)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	order := &model.Order{ID: uint64(orderID), UserID: userID}
	for _, t := range tickets {
		var rowsMax, seatsMax uint32
		err = tx.QueryRowContext(ctx,
			`SELECT h.seat_rows, h.seats_in_row
			 FROM movie_sessions s JOIN cinema_halls h ON h.id = s.hall_id
			 WHERE s.id = ?`, t.SessionID).Scan(&rowsMax, &seatsMax)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
		if t.Row < 1 || t.Row > rowsMax || t.Seat < 1 || t.Seat > seatsMax {
			return nil, fmt.Errorf("%w: row %d seat %d (hall is %dx%d)",
				ErrSeatOutOfRange, t.Row, t.Seat, rowsMax, seatsMax)
		}

		var ins sql.Result
		ins, err = tx.ExecContext(ctx,
			"INSERT INTO tickets (order_id, session_id, row_no, seat_no) VALUES (?, ?, ?, ?)",
			orderID, t.SessionID, t.Row, t.Seat)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return nil, ErrSeatTaken
			}
			return nil, err
		}
		ticketID, _ := ins.LastInsertId()
		order.Tickets = append(order.Tickets, model.Ticket{
			ID:        uint64(ticketID),
			OrderID:   order.ID,
			SessionID: t.SessionID,
			Row:       t.Row,
			Seat:      t.Seat,
		})
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}

// ListByUser returns the user's orders, newest first, each with its tickets.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o := new(model.Order)
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if o.Tickets, err = r.ticketsForOrder(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetByIDAndUser fetches one order, only when it belongs to the user.
func (r *OrderRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE id = ? AND user_id = ?",
		id, userID).Scan(&o.ID, &o.UserID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.Tickets, err = r.ticketsForOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ticketsForOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, session_id, row_no, seat_no FROM tickets WHERE order_id = ? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.SessionID, &t.Row, &t.Seat); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
