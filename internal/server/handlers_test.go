package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/desertthunder/lyriq/internal/tasks"
	tu "github.com/desertthunder/lyriq/internal/testing"
)

// memoryStore is a minimal in-memory [tasks.AnalysisStore].
type memoryStore struct {
	entries     map[string]*models.AnalyzedSong
	upsertCount int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]*models.AnalyzedSong{}}
}

func (s *memoryStore) GetByFingerprint(title, artist string) (*models.AnalyzedSong, error) {
	return s.entries[models.Fingerprint(title, artist)], nil
}

func (s *memoryStore) Upsert(track models.TrackSnapshot, document models.AnalysisDocument) (string, error) {
	s.upsertCount++
	entry := models.NewAnalyzedSong(1, track, document)
	entry.SetID("mem-id")
	s.entries[entry.Fingerprint()] = entry
	return entry.ID(), nil
}

func testRouter(search *tu.MockSearchService, engine *tasks.AnalysisEngine) *BasicRouter {
	logger := shared.NewLogger(nil)
	router := NewBasicRouter()
	router.Use(Recovery(logger), Logging(logger))
	if search != nil {
		router.Handler(NewSearchHandler(search, logger))
	}
	if engine != nil {
		router.Handler(NewAnalyzeHandler(engine, logger))
	}
	router.Handler(&HealthHandler{})
	return router
}

func TestSearchHandler(t *testing.T) {
	t.Run("Missing Query Is 400", func(t *testing.T) {
		router := testRouter(&tu.MockSearchService{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		var body map[string]string
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["error"] != "Query required" {
			t.Errorf("unexpected error body: %v", body)
		}
	})

	t.Run("Provider Failure Is 500", func(t *testing.T) {
		router := testRouter(&tu.MockSearchService{Err: errors.New("upstream down")}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=test", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Success Wraps Songs", func(t *testing.T) {
		search := &tu.MockSearchService{Tracks: []models.Track{
			{ID: "t1", Title: "Song", Artist: "Artist", ImageURL: "https://img", SpotifyURL: "https://open.spotify.com/track/t1"},
		}}
		router := testRouter(search, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=song", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body struct {
			Songs []models.Track `json:"songs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.Songs) != 1 || body.Songs[0].ID != "t1" {
			t.Errorf("unexpected songs: %+v", body.Songs)
		}
	})

	t.Run("Wrong Method Is 405", func(t *testing.T) {
		router := testRouter(&tu.MockSearchService{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search?q=x", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestAnalyzeHandler(t *testing.T) {
	newEngine := func(store tasks.AnalysisStore, gen *tu.MockGenerator) *tasks.AnalysisEngine {
		return tasks.NewAnalysisEngine(tasks.EngineOpts{Store: store, Generator: gen})
	}

	analyzeBody := func(force bool) *bytes.Buffer {
		body, _ := json.Marshal(map[string]any{
			"song": map[string]any{
				"id": "t1", "title": "Song", "artist": "Artist",
				"imageUrl": "https://img", "spotifyUrl": "https://open.spotify.com/track/t1",
			},
			"forceRegenerate": force,
		})
		return bytes.NewBuffer(body)
	}

	t.Run("Invalid Body Is 400", func(t *testing.T) {
		router := testRouter(nil, newEngine(newMemoryStore(), &tu.MockGenerator{Document: tu.ValidDocument()}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString("not json")))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Missing Song Is 400", func(t *testing.T) {
		router := testRouter(nil, newEngine(newMemoryStore(), &tu.MockGenerator{Document: tu.ValidDocument()}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"forceRegenerate": false}`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Generation Failure Is 200 With Null Meaning", func(t *testing.T) {
		router := testRouter(nil, newEngine(newMemoryStore(), &tu.MockGenerator{Err: errors.New("model down")}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(false)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if string(body["meaning"]) != "null" {
			t.Errorf("expected null meaning, got %s", body["meaning"])
		}
	})

	t.Run("Cache Round Trip", func(t *testing.T) {
		store := newMemoryStore()
		gen := &tu.MockGenerator{Document: tu.ValidDocument()}
		router := testRouter(nil, newEngine(store, gen))

		// First request generates and persists.
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(false)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var first struct {
			Meaning   *models.AnalysisDocument `json:"meaning"`
			FromCache bool                     `json:"fromCache"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if first.FromCache {
			t.Error("expected fromCache false on first request")
		}
		if first.Meaning == nil {
			t.Fatal("expected meaning on first request")
		}

		// Second request is served from cache with no new generation.
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(false)))

		var second struct {
			Meaning   *models.AnalysisDocument `json:"meaning"`
			FromCache bool                     `json:"fromCache"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if !second.FromCache {
			t.Error("expected fromCache true on second request")
		}
		if gen.Calls.Load() != 1 {
			t.Errorf("expected exactly 1 generation, got %d", gen.Calls.Load())
		}
		if store.upsertCount != 1 {
			t.Errorf("expected exactly 1 upsert, got %d", store.upsertCount)
		}
	})

	t.Run("Force Regenerates", func(t *testing.T) {
		store := newMemoryStore()
		gen := &tu.MockGenerator{Document: tu.ValidDocument()}
		router := testRouter(nil, newEngine(store, gen))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(false)))
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(true)))

		if gen.Calls.Load() != 2 {
			t.Errorf("expected 2 generations with force, got %d", gen.Calls.Load())
		}
		if store.upsertCount != 2 {
			t.Errorf("expected 2 upserts with force, got %d", store.upsertCount)
		}
	})

	t.Run("Video Omitted As Null When Disabled", func(t *testing.T) {
		router := testRouter(nil, newEngine(newMemoryStore(), &tu.MockGenerator{Document: tu.ValidDocument()}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", analyzeBody(false)))

		var body map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if string(body["youtubeVideo"]) != "null" {
			t.Errorf("expected null youtubeVideo, got %s", body["youtubeVideo"])
		}
	})
}

func TestHealthHandler(t *testing.T) {
	router := testRouter(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mw("first"), mw("second"))
	router.Handle("GET /ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected middleware order: %v", order)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := shared.NewLogger(nil)

	router := NewBasicRouter()
	router.Use(Recovery(logger))
	router.Handle("GET /boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
