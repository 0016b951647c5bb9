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

// ActorHandler serves CRUD for actors.
type ActorHandler struct {
	Actors *repository.ActorRepo
}

func NewActorHandler(a *repository.ActorRepo) *ActorHandler {
	if a == nil {
		panic("nil repository passed to NewActorHandler")
	}
	return &ActorHandler{Actors: a}
}

type actorReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func toActorResp(a *model.Actor) actorResp {
	return actorResp{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		FullName:  a.FirstName + " " + a.LastName,
	}
}

// List handles GET /v1/actors.
func (h *ActorHandler) List(c echo.Context) error {
	actors, err := h.Actors.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]actorResp, 0, len(actors))
	for _, a := range actors {
		out = append(out, toActorResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/actors/:id.
func (h *ActorHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Actors.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toActorResp(a))
}

// Create handles POST /v1/actors.
func (h *ActorHandler) Create(c echo.Context) error {
	var req actorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}
	a := &model.Actor{FirstName: req.FirstName, LastName: req.LastName}
	if err := h.Actors.Create(c.Request().Context(), a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toActorResp(a))
}

// Update handles PUT /v1/actors/:id.
func (h *ActorHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req actorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}
	if err := h.Actors.Update(c.Request().Context(), id, req.FirstName, req.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toActorResp(&model.Actor{ID: id, FirstName: req.FirstName, LastName: req.LastName}))
}

// Delete handles DELETE /v1/actors/:id.
func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Actors.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
