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

// GenreHandler serves CRUD for genres.  Write access is enforced by the
// access middleware before any method here runs.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

func NewGenreHandler(g *repository.GenreRepo) *GenreHandler {
	if g == nil {
		panic("nil repository passed to NewGenreHandler")
	}
	return &GenreHandler{Genres: g}
}

type genreReq struct {
	Name string `json:"name"`
}

type genreResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// List handles GET /v1/genres.
func (h *GenreHandler) List(c echo.Context) error {
	genres, err := h.Genres.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]genreResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreResp{ID: g.ID, Name: g.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/genres/:id.
func (h *GenreHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	g, err := h.Genres.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, genreResp{ID: g.ID, Name: g.Name})
}

// Create handles POST /v1/genres.
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	g := &model.Genre{Name: req.Name}
	if err := h.Genres.Create(c.Request().Context(), g); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, genreResp{ID: g.ID, Name: g.Name})
}

// Update handles PUT /v1/genres/:id.
func (h *GenreHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.Genres.Update(c.Request().Context(), id, req.Name); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, genreResp{ID: id, Name: req.Name})
}

// Delete handles DELETE /v1/genres/:id.
func (h *GenreHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Genres.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
