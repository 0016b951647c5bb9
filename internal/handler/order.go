// This file serves the booking endpoints.  Orders require a plain
// authenticated user (the access policy does not apply: customers, not
// staff, buy tickets).  A successful order emits an order.created event to
// the message broker; publish failures are logged by the publisher and
// never fail the request.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/middleware"
	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/queue"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
	queue_publisher "github.com/iliyamo/cinema-booking-api/internal/service"
)

// OrderStore is the persistence surface the order handler needs.  It is
// satisfied by *repository.OrderRepo; tests substitute an in-memory fake.
type OrderStore interface {
	CreateWithTickets(ctx context.Context, userID uint64, tickets []model.Ticket) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Order, error)
	GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Order, error)
}

// OrderHandler serves order creation and listing for the current user.
type OrderHandler struct {
	Orders OrderStore
}

func NewOrderHandler(o OrderStore) *OrderHandler {
	if o == nil {
		panic("nil store passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: o}
}

type ticketReq struct {
	SessionID uint64 `json:"movie_session"`
	Row       uint32 `json:"row"`
	Seat      uint32 `json:"seat"`
}

type orderReq struct {
	Tickets []ticketReq `json:"tickets"`
}

type ticketResp struct {
	ID        uint64 `json:"id"`
	SessionID uint64 `json:"movie_session"`
	Row       uint32 `json:"row"`
	Seat      uint32 `json:"seat"`
}

type orderResp struct {
	ID        uint64       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []ticketResp `json:"tickets"`
}

func toOrderResp(o *model.Order) orderResp {
	resp := orderResp{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]ticketResp, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		resp.Tickets = append(resp.Tickets, ticketResp{
			ID: t.ID, SessionID: t.SessionID, Row: t.Row, Seat: t.Seat,
		})
	}
	return resp
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Tickets) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets is required"})
	}
	tickets := make([]model.Ticket, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		if t.SessionID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_session is required"})
		}
		tickets = append(tickets, model.Ticket{SessionID: t.SessionID, Row: t.Row, Seat: t.Seat})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.CreateWithTickets(ctx, caller.UserID, tickets)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie session not found"})
		case errors.Is(err, repository.ErrSeatOutOfRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	// Fire-and-forget broker notification.
	go func(o *model.Order, email string) {
		ev := queue.OrderCreatedEvent{
			OrderID:   o.ID,
			UserID:    o.UserID,
			UserEmail: email,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		for _, t := range o.Tickets {
			ev.Tickets = append(ev.Tickets, queue.TicketRef{
				SessionID: t.SessionID, Row: t.Row, Seat: t.Seat,
			})
		}
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishOrderCreated(pubCtx, ev)
	}(order, caller.Email)

	return c.JSON(http.StatusCreated, toOrderResp(order))
}

// List handles GET /v1/orders and returns only the caller's orders.
func (h *OrderHandler) List(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	orders, err := h.Orders.ListByUser(c.Request().Context(), caller.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/orders/:id.  Users can only see their own orders;
// foreign orders look like 404.
func (h *OrderHandler) Get(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	o, err := h.Orders.GetByIDAndUser(c.Request().Context(), id, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toOrderResp(o))
}
