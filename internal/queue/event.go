// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketRef identifies one purchased seat inside an OrderCreatedEvent.
type TicketRef struct {
	SessionID uint64 `json:"movie_session"`
	Row       uint32 `json:"row"`
	Seat      uint32 `json:"seat"`
}

// OrderCreatedEvent is published when an order is successfully placed.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID   uint64      `json:"order_id"`
	UserID    uint64      `json:"user_id"`
	UserEmail string      `json:"user_email"`
	Tickets   []TicketRef `json:"tickets"`
	CreatedAt string      `json:"created_at"`
}
