// This file serves movie sessions.  The list endpoint answers the schedule
// browse: each item carries the joined movie title/poster and hall
// name/capacity plus the remaining ticket count.  Detail responses add the
// already-sold seats so clients can render the hall grid.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
)

// SessionHandler serves CRUD and listing for movie sessions.
type SessionHandler struct {
	Sessions *repository.SessionRepo
}

func NewSessionHandler(s *repository.SessionRepo) *SessionHandler {
	if s == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: s}
}

type sessionReq struct {
	MovieID  uint64    `json:"movie"`
	HallID   uint64    `json:"cinema_hall"`
	ShowTime time.Time `json:"show_time"`
}

type sessionListResp struct {
	ID               uint64    `json:"id"`
	ShowTime         time.Time `json:"show_time"`
	MovieID          uint64    `json:"movie"`
	MovieTitle       string    `json:"movie_title"`
	MovieImage       *string   `json:"movie_image"`
	HallID           uint64    `json:"cinema_hall"`
	HallName         string    `json:"cinema_hall_name"`
	HallCapacity     uint32    `json:"cinema_hall_capacity"`
	TicketsAvailable uint32    `json:"tickets_available"`
}

type seatResp struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

type sessionDetailResp struct {
	ID          uint64     `json:"id"`
	ShowTime    time.Time  `json:"show_time"`
	MovieID     uint64     `json:"movie"`
	HallID      uint64     `json:"cinema_hall"`
	TakenPlaces []seatResp `json:"taken_places"`
}

// List handles GET /v1/sessions with optional date/movie filters.
func (h *SessionHandler) List(c echo.Context) error {
	var f repository.SessionFilter
	if d := c.QueryParam("date"); d != "" {
		day, err := time.ParseInLocation("2006-01-02", d, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		f.Date = &day
	}
	if m := c.QueryParam("movie"); m != "" {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie filter"})
		}
		f.MovieID = id
	}

	items, err := h.Sessions.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]sessionListResp, 0, len(items))
	for _, it := range items {
		resp := sessionListResp{
			ID:               it.ID,
			ShowTime:         it.ShowTime,
			MovieID:          it.MovieID,
			MovieTitle:       it.MovieTitle,
			HallID:           it.HallID,
			HallName:         it.HallName,
			HallCapacity:     it.HallCapacity,
			TicketsAvailable: it.TicketsAvailable,
		}
		if it.MovieImage != nil {
			url := "/media/" + *it.MovieImage
			resp.MovieImage = &url
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	taken, err := h.Sessions.TakenSeats(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := sessionDetailResp{
		ID:          s.ID,
		ShowTime:    s.ShowTime,
		MovieID:     s.MovieID,
		HallID:      s.HallID,
		TakenPlaces: make([]seatResp, 0, len(taken)),
	}
	for _, t := range taken {
		resp.TakenPlaces = append(resp.TakenPlaces, seatResp{Row: t.Row, Seat: t.Seat})
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.HallID == 0 || req.ShowTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie, cinema_hall and show_time are required"})
	}
	s := &model.MovieSession{MovieID: req.MovieID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.Sessions.Create(c.Request().Context(), s); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cinema hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id": s.ID, "movie": s.MovieID, "cinema_hall": s.HallID, "show_time": s.ShowTime,
	})
}

// Update handles PUT /v1/sessions/:id.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.HallID == 0 || req.ShowTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie, cinema_hall and show_time are required"})
	}
	s := &model.MovieSession{ID: id, MovieID: req.MovieID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.Sessions.Update(c.Request().Context(), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id": s.ID, "movie": s.MovieID, "cinema_hall": s.HallID, "show_time": s.ShowTime,
	})
}

// Delete handles DELETE /v1/sessions/:id.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session has sold tickets"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
