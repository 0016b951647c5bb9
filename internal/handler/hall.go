package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
)

// HallHandler serves CRUD for cinema halls.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(h *repository.HallRepo) *HallHandler {
	if h == nil {
		panic("nil repository passed to NewHallHandler")
	}
	return &HallHandler{Halls: h}
}

type hallReq struct {
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
}

type hallResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
	Capacity   uint32 `json:"capacity"`
}

func toHallResp(h *model.CinemaHall) hallResp {
	return hallResp{
		ID:         h.ID,
		Name:       h.Name,
		Rows:       h.SeatRows,
		SeatsInRow: h.SeatsInRow,
		Capacity:   h.Capacity(),
	}
}

// List handles GET /v1/halls.
func (h *HallHandler) List(c echo.Context) error {
	halls, err := h.Halls.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]hallResp, 0, len(halls))
	for _, hall := range halls {
		out = append(out, toHallResp(hall))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/halls/:id.
func (h *HallHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toHallResp(hall))
}

// Create handles POST /v1/halls.
func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Rows == 0 || req.SeatsInRow == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, rows and seats_in_row are required"})
	}
	hall := &model.CinemaHall{Name: req.Name, SeatRows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toHallResp(hall))
}

// Update handles PUT /v1/halls/:id.
func (h *HallHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Rows == 0 || req.SeatsInRow == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, rows and seats_in_row are required"})
	}
	hall := &model.CinemaHall{ID: id, Name: req.Name, SeatRows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Halls.Update(c.Request().Context(), hall); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema hall not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toHallResp(hall))
}

// Delete handles DELETE /v1/halls/:id.
func (h *HallHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Halls.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema hall not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall hosts sessions"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
