package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/middleware"
	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
	"github.com/iliyamo/cinema-booking-api/internal/utils"
)

// fakeOrderStore is an in-memory OrderStore with one hall grid shared by all
// sessions, mirroring the validation the real repository runs in its
// transaction.
type fakeOrderStore struct {
	rows     uint32
	seats    uint32
	sessions map[uint64]bool
	taken    map[string]bool
	nextID   uint64
	orders   map[uint64]*model.Order
}

func newFakeOrderStore(rows, seats uint32, sessionIDs ...uint64) *fakeOrderStore {
	s := &fakeOrderStore{
		rows:     rows,
		seats:    seats,
		sessions: map[uint64]bool{},
		taken:    map[string]bool{},
		nextID:   1,
		orders:   map[uint64]*model.Order{},
	}
	for _, id := range sessionIDs {
		s.sessions[id] = true
	}
	return s
}

func seatKey(sessionID uint64, row, seat uint32) string {
	return fmt.Sprintf("%d/%d/%d", sessionID, row, seat)
}

func (s *fakeOrderStore) CreateWithTickets(_ context.Context, userID uint64, tickets []model.Ticket) (*model.Order, error) {
	for _, t := range tickets {
		if !s.sessions[t.SessionID] {
			return nil, repository.ErrSessionNotFound
		}
		if t.Row < 1 || t.Row > s.rows || t.Seat < 1 || t.Seat > s.seats {
			return nil, fmt.Errorf("%w: row %d seat %d (hall is %dx%d)",
				repository.ErrSeatOutOfRange, t.Row, t.Seat, s.rows, s.seats)
		}
		if s.taken[seatKey(t.SessionID, t.Row, t.Seat)] {
			return nil, repository.ErrSeatTaken
		}
	}
	order := &model.Order{ID: s.nextID, UserID: userID, CreatedAt: time.Now().UTC()}
	s.nextID++
	for i, t := range tickets {
		s.taken[seatKey(t.SessionID, t.Row, t.Seat)] = true
		order.Tickets = append(order.Tickets, model.Ticket{
			ID: order.ID*100 + uint64(i), OrderID: order.ID,
			SessionID: t.SessionID, Row: t.Row, Seat: t.Seat,
		})
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID uint64) ([]*model.Order, error) {
	var out []*model.Order
	for id := uint64(1); id < s.nextID; id++ {
		if o, ok := s.orders[id]; ok && o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) GetByIDAndUser(_ context.Context, id, userID uint64) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

// newOrderServer mounts the order routes behind strict auth, the way the
// real router registers them.
func newOrderServer(t *testing.T, store *fakeOrderStore) *echo.Echo {
	t.Helper()
	h := NewOrderHandler(store)
	e := echo.New()
	g := e.Group("/v1", middleware.Auth(movieTestSecret))
	g.POST("/orders", h.Create)
	g.GET("/orders", h.List)
	g.GET("/orders/:id", h.Get)
	return e
}

func orderAuth(t *testing.T, userID uint64) string {
	t.Helper()
	tok, err := utils.NewAccessToken(movieTestSecret, userID, fmt.Sprintf("u%d@test.com", userID), false, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok.Token
}

func orderBody(tickets ...[3]uint64) *bytes.Buffer {
	type tk struct {
		SessionID uint64 `json:"movie_session"`
		Row       uint64 `json:"row"`
		Seat      uint64 `json:"seat"`
	}
	payload := struct {
		Tickets []tk `json:"tickets"`
	}{}
	for _, t := range tickets {
		payload.Tickets = append(payload.Tickets, tk{SessionID: t[0], Row: t[1], Seat: t[2]})
	}
	buf := &bytes.Buffer{}
	_ = json.NewEncoder(buf).Encode(payload)
	return buf
}

func TestCreateOrder(t *testing.T) {
	store := newFakeOrderStore(5, 8, 1)
	e := newOrderServer(t, store)

	rec := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
		echo.MIMEApplicationJSON, orderBody([3]uint64{1, 2, 3}, [3]uint64{1, 2, 4}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp orderResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tickets) != 2 {
		t.Errorf("response has %d tickets, want 2", len(resp.Tickets))
	}
	stored, err := store.GetByIDAndUser(context.Background(), resp.ID, 7)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if len(stored.Tickets) != 2 {
		t.Errorf("stored order has %d tickets, want 2", len(stored.Tickets))
	}
}

func TestCreateOrderUnknownSession(t *testing.T) {
	e := newOrderServer(t, newFakeOrderStore(5, 8, 1))
	rec := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
		echo.MIMEApplicationJSON, orderBody([3]uint64{99, 1, 1}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown session: got %d, want 400", rec.Code)
	}
}

func TestCreateOrderSeatOutOfRange(t *testing.T) {
	e := newOrderServer(t, newFakeOrderStore(5, 8, 1))
	cases := [][3]uint64{
		{1, 6, 1}, // row beyond grid
		{1, 1, 9}, // seat beyond grid
		{1, 0, 1}, // rows start at 1
	}
	for _, tc := range cases {
		rec := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
			echo.MIMEApplicationJSON, orderBody(tc))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("seat %v: got %d, want 400", tc, rec.Code)
		}
	}
}

func TestCreateOrderSeatTaken(t *testing.T) {
	store := newFakeOrderStore(5, 8, 1)
	e := newOrderServer(t, store)

	first := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
		echo.MIMEApplicationJSON, orderBody([3]uint64{1, 3, 3}))
	if first.Code != http.StatusCreated {
		t.Fatalf("first booking: got %d, want 201", first.Code)
	}
	second := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 8),
		echo.MIMEApplicationJSON, orderBody([3]uint64{1, 3, 3}))
	if second.Code != http.StatusConflict {
		t.Errorf("double booking: got %d, want 409 (%s)", second.Code, second.Body.String())
	}
}

func TestCreateOrderEmptyTickets(t *testing.T) {
	e := newOrderServer(t, newFakeOrderStore(5, 8, 1))
	rec := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
		echo.MIMEApplicationJSON, orderBody())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty tickets: got %d, want 400", rec.Code)
	}
}

func TestCreateOrderAnonymous(t *testing.T) {
	e := newOrderServer(t, newFakeOrderStore(5, 8, 1))
	rec := request(e, http.MethodPost, "/v1/orders", "",
		echo.MIMEApplicationJSON, orderBody([3]uint64{1, 1, 1}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous order: got %d, want 401", rec.Code)
	}
}

func TestOrdersScopedToOwner(t *testing.T) {
	store := newFakeOrderStore(5, 8, 1)
	e := newOrderServer(t, store)

	rec := request(e, http.MethodPost, "/v1/orders", orderAuth(t, 7),
		echo.MIMEApplicationJSON, orderBody([3]uint64{1, 1, 1}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201", rec.Code)
	}

	rec = request(e, http.MethodGet, "/v1/orders", orderAuth(t, 8), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list as other user: got %d, want 200", rec.Code)
	}
	var list []orderResp
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other user sees %d foreign orders, want 0", len(list))
	}

	// Foreign orders look like 404, not 403: existence is not leaked.
	if rec := request(e, http.MethodGet, "/v1/orders/1", orderAuth(t, 8), "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign order detail: got %d, want 404", rec.Code)
	}
	if rec := request(e, http.MethodGet, "/v1/orders/1", orderAuth(t, 7), "", nil); rec.Code != http.StatusOK {
		t.Errorf("own order detail: got %d, want 200", rec.Code)
	}
}
