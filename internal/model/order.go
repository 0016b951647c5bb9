package model

import "time"

// Order records a user's booking.  It aggregates one or more tickets
// purchased in a single transaction.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the order.
//  Tickets   – tickets created with the order.
//  CreatedAt – creation timestamp.
type Order struct {
	ID        uint64    // orders.id
	UserID    uint64    // orders.user_id
	Tickets   []Ticket  // from tickets
	CreatedAt time.Time // orders.created_at
}

// Ticket reserves one seat in one movie session.  The (SessionID, Row,
// Seat) triple is unique: a seat can only be sold once per session.  Row
// and Seat are validated against the hall's grid before insertion.
type Ticket struct {
	ID        uint64 // tickets.id
	OrderID   uint64 // tickets.order_id
	SessionID uint64 // tickets.session_id
	Row       uint32 // tickets.row_no
	Seat      uint32 // tickets.seat_no
}
