// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// fakeStore is an in-memory CatalogStore that also serves the engine.
type fakeStore struct {
	mu      sync.Mutex
	users   map[int64]models.User
	books   map[string]models.Book
	ratings map[int64]map[string]int
	order   []string

	pingErr   error
	readErr   error
	writeErr  error
	schemaVer int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[int64]models.User),
		books:     make(map[string]models.Book),
		ratings:   make(map[int64]map[string]int),
		schemaVer: 2,
	}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }
func (s *fakeStore) Driver() string             { return config.DriverDuckDB }

func (s *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.users[u.UserID]; ok {
		return fmt.Errorf("user %d: %w", u.UserID, database.ErrAlreadyExists)
	}
	s.users[u.UserID] = *u
	return nil
}

func (s *fakeStore) CreateBook(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.books[b.ISBN]; ok {
		return fmt.Errorf("book %s: %w", b.ISBN, database.ErrAlreadyExists)
	}
	s.books[b.ISBN] = *b
	s.order = append(s.order, b.ISBN)
	return nil
}

func (s *fakeStore) UpsertRating(_ context.Context, p *models.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.users[p.UserID]; !ok {
		return fmt.Errorf("user %d: %w", p.UserID, database.ErrNotFound)
	}
	if _, ok := s.books[p.ISBN]; !ok {
		return fmt.Errorf("book %s: %w", p.ISBN, database.ErrNotFound)
	}
	if s.ratings[p.UserID] == nil {
		s.ratings[p.UserID] = make(map[string]int)
	}
	s.ratings[p.UserID][p.ISBN] = p.Rating
	return nil
}

func (s *fakeStore) GetRecordCounts(context.Context) (database.RecordCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return database.RecordCounts{}, s.readErr
	}
	counts := database.RecordCounts{Users: int64(len(s.users)), Books: int64(len(s.books))}
	for _, r := range s.ratings {
		counts.Ratings += int64(len(r))
	}
	return counts, nil
}

func (s *fakeStore) GetCurrentSchemaVersion(context.Context) (int, error) {
	return s.schemaVer, nil
}

func (s *fakeStore) GetAllItems(context.Context) ([]recommend.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	items := make([]recommend.Item, 0, len(s.order))
	for _, isbn := range s.order {
		b := s.books[isbn]
		items = append(items, recommend.Item{ItemID: b.ISBN, Title: b.Title, Author: b.Author})
	}
	return items, nil
}

func (s *fakeStore) GetRatedItemIDs(_ context.Context, userID int64) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make(map[string]struct{})
	for isbn := range s.ratings[userID] {
		out[isbn] = struct{}{}
	}
	return out, nil
}

type fixedBreaker string

func (b fixedBreaker) State() string { return string(b) }

func strPtr(s string) *string { return &s }

// testModel knows users 1 and 2 and items A-D. With one factor, user 1
// scores A 7.5, B 6, C 6 and D 4.5.
func testModel(t *testing.T) *recommend.Model {
	t.Helper()
	state := &storage.ModelState{
		FactorCount: 1,
		EpochCount:  1,
		ScaleMin:    1,
		ScaleMax:    10,
		GlobalMean:  5,
		UserIDs:     []int64{1, 2},
		UserBias:    []float64{0.5, -0.5},
		UserFactors: [][]float64{{1}, {-1}},
		ItemIDs:     []string{"A", "B", "C", "D"},
		ItemBias:    []float64{1, 0, 0, -1},
		ItemFactors: [][]float64{{1}, {0.5}, {0.5}, {0}},
	}
	m, err := recommend.NewModel(state, storage.Metadata{Name: "latent_factor", Version: 3})
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

// seededStore holds users 1 and 2, books A-D and user 1's rating of A.
func seededStore() *fakeStore {
	s := newFakeStore()
	s.users[1] = models.User{UserID: 1}
	s.users[2] = models.User{UserID: 2}
	for _, id := range []string{"A", "B", "C", "D"} {
		s.books[id] = models.Book{ISBN: id, Title: "Book " + id, Author: strPtr("Author " + id)}
		s.order = append(s.order, id)
	}
	s.ratings[1] = map[string]int{"A": 9}
	return s
}

// setupTestHandler returns a handler over store with an engine serving
// model (nil for none).
func setupTestHandler(t *testing.T, store *fakeStore, model *recommend.Model) *Handler {
	t.Helper()
	engine, err := recommend.NewEngine(nil, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if model != nil {
		engine.SetModel(model)
	}
	cfg := &config.Config{API: config.APIConfig{MaxTopN: 3}}
	return NewHandler(store, engine, cfg, "test")
}

// testResponse is models.APIResponse with Data left raw for typed decoding.
type testResponse struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	if data != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return resp
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// serve runs req through the full router.
func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	rec := httptest.NewRecorder()
	NewRouter(h, NewChiMiddleware(cfg)).SetupChi().ServeHTTP(rec, req)
	return rec
}
