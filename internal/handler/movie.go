// This file serves the movie catalog: filtered listing, CRUD and poster
// upload.  Listing filters mirror the query parameters `title`, `genres`
// and `actors`.  Poster upload is a dedicated endpoint; an `image` part
// sent with the create request is deliberately ignored so movie creation
// and poster management stay separate operations.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
	"github.com/iliyamo/cinema-booking-api/internal/utils"
)

// MovieStore is the persistence surface the movie handler needs.  It is
// satisfied by *repository.MovieRepo; tests substitute an in-memory fake.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, f repository.MovieFilter) ([]*model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	SetImage(ctx context.Context, id uint64, path string) error
	Delete(ctx context.Context, id uint64) error
}

// MovieHandler serves the movie catalog endpoints.
type MovieHandler struct {
	Movies    MovieStore
	MediaRoot string // where uploaded posters are written
}

func NewMovieHandler(movies MovieStore, mediaRoot string) *MovieHandler {
	if movies == nil {
		panic("nil store passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies, MediaRoot: mediaRoot}
}

type movieReq struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Duration    uint32   `json:"duration" form:"duration"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

type movieResp struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    uint32   `json:"duration"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
	Image       *string  `json:"image"`
}

func toMovieResp(m *model.Movie) movieResp {
	resp := movieResp{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.DurationMin,
		Genres:      m.GenreIDs,
		Actors:      m.ActorIDs,
	}
	if resp.Genres == nil {
		resp.Genres = []uint64{}
	}
	if resp.Actors == nil {
		resp.Actors = []uint64{}
	}
	if m.ImagePath != nil {
		url := "/media/" + *m.ImagePath
		resp.Image = &url
	}
	return resp
}

// List handles GET /v1/movies with optional title/genres/actors filters.
func (h *MovieHandler) List(c echo.Context) error {
	f := repository.MovieFilter{Title: strings.TrimSpace(c.QueryParam("title"))}
	var err error
	if f.GenreIDs, err = parseIDList(c.QueryParam("genres")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genres filter"})
	}
	if f.ActorIDs, err = parseIDList(c.QueryParam("actors")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid actors filter"})
	}

	movies, err := h.Movies.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toMovieResp(m))
}

// Create handles POST /v1/movies.  Accepts JSON or multipart form; any
// `image` part in a multipart body is ignored.
func (h *MovieHandler) Create(c echo.Context) error {
	req, err := bindMovieReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Duration == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration are required"})
	}

	m := &model.Movie{
		Title:       req.Title,
		Description: req.Description,
		DurationMin: req.Duration,
		GenreIDs:    req.Genres,
		ActorIDs:    req.Actors,
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toMovieResp(m))
}

// Update handles PUT /v1/movies/:id.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := bindMovieReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Duration == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration are required"})
	}

	m := &model.Movie{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		DurationMin: req.Duration,
		GenreIDs:    req.Genres,
		ActorIDs:    req.Actors,
	}
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Re-read so the response carries the stored image path.
	stored, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toMovieResp(stored))
}

// Delete handles DELETE /v1/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie has scheduled sessions"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /v1/movies/:id/image.  The multipart `image`
// part must decode as JPEG or PNG; anything else is a 400.  Responds 200
// with the stored image URL.
func (h *MovieHandler) UploadImage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Movies.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read image"})
	}
	defer src.Close()

	path, err := utils.SaveImage(h.MediaRoot, "movies", src)
	if err != nil {
		if errors.Is(err, utils.ErrNotAnImage) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "not a valid image"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	if err := h.Movies.SetImage(c.Request().Context(), id, path); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	url := "/media/" + path
	return c.JSON(http.StatusOK, echo.Map{"id": id, "image": url})
}

// bindMovieReq reads a movie payload from JSON or multipart/urlencoded
// form bodies.  Form bodies carry genre/actor IDs as repeated fields or
// comma-separated values.
func bindMovieReq(c echo.Context) (movieReq, error) {
	var req movieReq
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) || strings.HasPrefix(ct, echo.MIMEApplicationForm) {
		req.Title = strings.TrimSpace(c.FormValue("title"))
		req.Description = c.FormValue("description")
		if d, err := strconv.ParseUint(c.FormValue("duration"), 10, 32); err == nil {
			req.Duration = uint32(d)
		}
		var err error
		if req.Genres, err = formIDList(c, "genres"); err != nil {
			return req, err
		}
		if req.Actors, err = formIDList(c, "actors"); err != nil {
			return req, err
		}
		return req, nil
	}
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	req.Title = strings.TrimSpace(req.Title)
	return req, nil
}

// formIDList collects repeated form values for key and parses them as IDs.
func formIDList(c echo.Context, key string) ([]uint64, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, v := range form[key] {
		parsed, err := parseIDList(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed...)
	}
	return ids, nil
}

// parseIDList parses a comma-separated list of positive integers.  Empty
// input yields nil without error.
func parseIDList(s string) ([]uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
