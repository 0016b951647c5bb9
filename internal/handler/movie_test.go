package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/middleware"
	"github.com/iliyamo/cinema-booking-api/internal/model"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
	"github.com/iliyamo/cinema-booking-api/internal/utils"
)

const movieTestSecret = "movie-test-secret"

// fakeMovieStore is an in-memory MovieStore for handler tests.
type fakeMovieStore struct {
	nextID uint64
	movies map[uint64]*model.Movie
}

func newFakeMovieStore() *fakeMovieStore {
	return &fakeMovieStore{nextID: 1, movies: map[uint64]*model.Movie{}}
}

func (s *fakeMovieStore) Create(_ context.Context, m *model.Movie) error {
	m.ID = s.nextID
	s.nextID++
	cp := *m
	s.movies[m.ID] = &cp
	return nil
}

func (s *fakeMovieStore) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	m, ok := s.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMovieStore) List(_ context.Context, f repository.MovieFilter) ([]*model.Movie, error) {
	var out []*model.Movie
	for id := uint64(1); id < s.nextID; id++ {
		m, ok := s.movies[id]
		if !ok {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Title)) {
			continue
		}
		if len(f.GenreIDs) > 0 && !intersects(m.GenreIDs, f.GenreIDs) {
			continue
		}
		if len(f.ActorIDs) > 0 && !intersects(m.ActorIDs, f.ActorIDs) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeMovieStore) Update(_ context.Context, m *model.Movie) error {
	stored, ok := s.movies[m.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Title = m.Title
	stored.Description = m.Description
	stored.DurationMin = m.DurationMin
	stored.GenreIDs = m.GenreIDs
	stored.ActorIDs = m.ActorIDs
	return nil
}

func (s *fakeMovieStore) SetImage(_ context.Context, id uint64, path string) error {
	m, ok := s.movies[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.ImagePath = &path
	return nil
}

func (s *fakeMovieStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.movies[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.movies, id)
	return nil
}

func intersects(a, b []uint64) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// newMovieServer mounts the movie routes behind the same policy chain the
// real router uses.
func newMovieServer(t *testing.T) (*echo.Echo, *fakeMovieStore) {
	t.Helper()
	store := newFakeMovieStore()
	h := NewMovieHandler(store, t.TempDir())

	e := echo.New()
	g := e.Group("/v1", middleware.OptionalAuth(movieTestSecret), middleware.Access())
	g.GET("/movies", h.List)
	g.POST("/movies", h.Create)
	g.GET("/movies/:id", h.Get)
	g.PUT("/movies/:id", h.Update)
	g.DELETE("/movies/:id", h.Delete)
	g.POST("/movies/:id/image", h.UploadImage)
	return e, store
}

func staffAuth(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(movieTestSecret, 1, "admin@test.com", true, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok.Token
}

func userAuth(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(movieTestSecret, 2, "user@test.com", false, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok.Token
}

func sampleMovie(t *testing.T, store *fakeMovieStore, title string, genres, actors []uint64) *model.Movie {
	t.Helper()
	m := &model.Movie{
		Title:       title,
		Description: "Sample description",
		DurationMin: 90,
		GenreIDs:    genres,
		ActorIDs:    actors,
	}
	if err := store.Create(context.Background(), m); err != nil {
		t.Fatalf("seed movie: %v", err)
	}
	return m
}

// pngBytes encodes a tiny valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with the given fields and an
// optional image part.
func multipartBody(t *testing.T, fields map[string][]string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, v := range vals {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if imageData != nil {
		fw, err := w.CreateFormFile("image", "poster.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(imageData); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func request(e *echo.Echo, method, target, auth, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUploadImageToMovie(t *testing.T) {
	e, store := newMovieServer(t)
	m := sampleMovie(t, store, "Sample movie", nil, nil)

	body, ct := multipartBody(t, nil, pngBytes(t))
	rec := request(e, http.MethodPost, "/v1/movies/1/image", staffAuth(t), ct, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Image, "/media/movies/") {
		t.Errorf("image url = %q, want /media/movies/ prefix", resp.Image)
	}

	stored, err := store.GetByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("reload movie: %v", err)
	}
	if stored.ImagePath == nil {
		t.Fatal("image path not recorded")
	}
}

func TestUploadImageWritesFile(t *testing.T) {
	store := newFakeMovieStore()
	mediaRoot := t.TempDir()
	h := NewMovieHandler(store, mediaRoot)
	e := echo.New()
	e.POST("/v1/movies/:id/image", h.UploadImage)
	sampleMovie(t, store, "Sample movie", nil, nil)

	body, ct := multipartBody(t, nil, pngBytes(t))
	rec := request(e, http.MethodPost, "/v1/movies/1/image", "", ct, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: got %d, want 200", rec.Code)
	}

	entries, err := os.ReadDir(filepath.Join(mediaRoot, "movies"))
	if err != nil {
		t.Fatalf("read media dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("media dir has %d entries, want 1", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Errorf("stored file %q does not keep .png extension", entries[0].Name())
	}
}

func TestUploadImageBadRequest(t *testing.T) {
	e, store := newMovieServer(t)
	sampleMovie(t, store, "Sample movie", nil, nil)

	body, ct := multipartBody(t, nil, []byte("not image"))
	rec := request(e, http.MethodPost, "/v1/movies/1/image", staffAuth(t), ct, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad image upload: got %d, want 400", rec.Code)
	}
}

func TestUploadImageUnknownMovie(t *testing.T) {
	e, _ := newMovieServer(t)
	body, ct := multipartBody(t, nil, pngBytes(t))
	rec := request(e, http.MethodPost, "/v1/movies/99/image", staffAuth(t), ct, body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown movie upload: got %d, want 404", rec.Code)
	}
}

func TestUploadImageUnauthorized(t *testing.T) {
	e, store := newMovieServer(t)
	sampleMovie(t, store, "Sample movie", nil, nil)

	body, ct := multipartBody(t, nil, pngBytes(t))
	if rec := request(e, http.MethodPost, "/v1/movies/1/image", "", ct, body); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous upload: got %d, want 401", rec.Code)
	}
	body, ct = multipartBody(t, nil, pngBytes(t))
	if rec := request(e, http.MethodPost, "/v1/movies/1/image", userAuth(t), ct, body); rec.Code != http.StatusForbidden {
		t.Errorf("non-staff upload: got %d, want 403", rec.Code)
	}
}

func TestCreateMovieIgnoresImagePart(t *testing.T) {
	e, store := newMovieServer(t)

	fields := map[string][]string{
		"title":       {"Title"},
		"description": {"Description"},
		"duration":    {"90"},
		"genres":      {"1"},
		"actors":      {"2"},
	}
	body, ct := multipartBody(t, fields, pngBytes(t))
	rec := request(e, http.MethodPost, "/v1/movies", staffAuth(t), ct, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	m, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("reload movie: %v", err)
	}
	if m.Title != "Title" || m.DurationMin != 90 {
		t.Errorf("movie = %q/%d, want Title/90", m.Title, m.DurationMin)
	}
	if m.ImagePath != nil {
		t.Error("image part on create must be ignored")
	}
	if len(m.GenreIDs) != 1 || m.GenreIDs[0] != 1 {
		t.Errorf("genres = %v, want [1]", m.GenreIDs)
	}
}

func TestImageShownOnDetailAndList(t *testing.T) {
	e, store := newMovieServer(t)
	sampleMovie(t, store, "Sample movie", nil, nil)

	body, ct := multipartBody(t, nil, pngBytes(t))
	if rec := request(e, http.MethodPost, "/v1/movies/1/image", staffAuth(t), ct, body); rec.Code != http.StatusOK {
		t.Fatalf("upload: got %d, want 200", rec.Code)
	}

	rec := request(e, http.MethodGet, "/v1/movies/1", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: got %d, want 200", rec.Code)
	}
	var detail movieResp
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Image == nil || !strings.HasPrefix(*detail.Image, "/media/") {
		t.Errorf("detail image = %v, want /media/ url", detail.Image)
	}

	rec = request(e, http.MethodGet, "/v1/movies", "", "", nil)
	var list []movieResp
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Image == nil {
		t.Error("list item missing image url")
	}
}

func TestListMovies(t *testing.T) {
	e, store := newMovieServer(t)
	sampleMovie(t, store, "The Ring", []uint64{1}, []uint64{1})
	sampleMovie(t, store, "Interstellar", []uint64{2}, []uint64{2})

	rec := request(e, http.MethodGet, "/v1/movies", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d, want 200", rec.Code)
	}
	var list []movieResp
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("list has %d movies, want 2", len(list))
	}
}

func TestFilterMovies(t *testing.T) {
	e, store := newMovieServer(t)
	ring := sampleMovie(t, store, "The Ring", []uint64{1}, []uint64{1})
	inter := sampleMovie(t, store, "Interstellar", []uint64{2}, []uint64{2})

	cases := []struct {
		name    string
		query   string
		wantIDs []uint64
	}{
		{"by title substring", "?title=ring", []uint64{ring.ID}},
		{"by genre", "?genres=1", []uint64{ring.ID}},
		{"by actor", "?actors=2", []uint64{inter.ID}},
		{"by genre list", "?genres=1,2", []uint64{ring.ID, inter.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := request(e, http.MethodGet, "/v1/movies"+tc.query, "", "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("got %d, want 200", rec.Code)
			}
			var list []movieResp
			if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
				t.Fatalf("decode list: %v", err)
			}
			got := make([]uint64, 0, len(list))
			for _, m := range list {
				got = append(got, m.ID)
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tc.wantIDs)
			}
			for i := range got {
				if got[i] != tc.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", got, tc.wantIDs)
				}
			}
		})
	}
}

func TestFilterMoviesBadIDList(t *testing.T) {
	e, _ := newMovieServer(t)
	rec := request(e, http.MethodGet, "/v1/movies?genres=abc", "", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad genres filter: got %d, want 400", rec.Code)
	}
}

func TestCreateMoviePermissions(t *testing.T) {
	e, _ := newMovieServer(t)
	payload := `{"title":"New","description":"Desc","duration":100,"genres":[1],"actors":[1]}`

	rec := request(e, http.MethodPost, "/v1/movies", "", echo.MIMEApplicationJSON, bytes.NewBufferString(payload))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: got %d, want 401", rec.Code)
	}
	rec = request(e, http.MethodPost, "/v1/movies", userAuth(t), echo.MIMEApplicationJSON, bytes.NewBufferString(payload))
	if rec.Code != http.StatusForbidden {
		t.Errorf("regular user create: got %d, want 403", rec.Code)
	}
	rec = request(e, http.MethodPost, "/v1/movies", staffAuth(t), echo.MIMEApplicationJSON, bytes.NewBufferString(payload))
	if rec.Code != http.StatusCreated {
		t.Errorf("staff create: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
}

func TestReadOnlyAccessForGuests(t *testing.T) {
	e, store := newMovieServer(t)
	sampleMovie(t, store, "Sample movie", nil, nil)

	if rec := request(e, http.MethodGet, "/v1/movies", "", "", nil); rec.Code != http.StatusOK {
		t.Errorf("guest list: got %d, want 200", rec.Code)
	}
	if rec := request(e, http.MethodGet, "/v1/movies/1", "", "", nil); rec.Code != http.StatusOK {
		t.Errorf("guest detail: got %d, want 200", rec.Code)
	}
}
