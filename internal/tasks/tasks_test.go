package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/lyriq/internal/models"
	tu "github.com/desertthunder/lyriq/internal/testing"
)

// mockStore is a configurable [AnalysisStore] double.
type mockStore struct {
	entry       *models.AnalyzedSong
	getErr      error
	upsertErr   error
	getCalls    atomic.Int64
	upsertCalls atomic.Int64
	lastUpsert  *models.AnalysisDocument
}

func (m *mockStore) GetByFingerprint(title, artist string) (*models.AnalyzedSong, error) {
	m.getCalls.Add(1)
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entry, nil
}

func (m *mockStore) Upsert(track models.TrackSnapshot, document models.AnalysisDocument) (string, error) {
	m.upsertCalls.Add(1)
	m.lastUpsert = &document
	if m.upsertErr != nil {
		return "", m.upsertErr
	}
	return "entry-id", nil
}

func testTrack() models.Track {
	return models.Track{
		ID:       "track1",
		Title:    "Midnight City",
		Artist:   "M83",
		ImageURL: "https://i.scdn.co/image/x",
	}
}

func cachedEntry(t *testing.T) *models.AnalyzedSong {
	t.Helper()
	entry := models.NewAnalyzedSong(1, models.SnapshotOf(testTrack()), *tu.ValidDocument())
	entry.SetID("cached-id")
	return entry
}

func TestAnalysisEngine(t *testing.T) {
	t.Run("Cache Hit Skips Generation", func(t *testing.T) {
		store := &mockStore{entry: cachedEntry(t)}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		if !outcome.FromCache {
			t.Error("expected FromCache true")
		}
		if outcome.Document == nil {
			t.Fatal("expected cached document")
		}
		if generator.Calls.Load() != 0 {
			t.Errorf("expected generator untouched, got %d calls", generator.Calls.Load())
		}
		if store.upsertCalls.Load() != 0 {
			t.Errorf("expected no persistence on cache hit, got %d upserts", store.upsertCalls.Load())
		}
	})

	t.Run("Cache Miss Generates And Persists", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		if outcome.FromCache {
			t.Error("expected FromCache false")
		}
		if outcome.Document == nil {
			t.Fatal("expected generated document")
		}
		if generator.Calls.Load() != 1 {
			t.Errorf("expected 1 generation, got %d", generator.Calls.Load())
		}
		if store.upsertCalls.Load() != 1 {
			t.Errorf("expected 1 upsert, got %d", store.upsertCalls.Load())
		}
	})

	t.Run("Force Bypasses Cache And Overwrites", func(t *testing.T) {
		store := &mockStore{entry: cachedEntry(t)}
		fresh := tu.ValidDocument()
		fresh.Vibe = "Regenerated vibe"
		generator := &tu.MockGenerator{Document: fresh}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), true)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		if outcome.FromCache {
			t.Error("expected FromCache false under force")
		}
		if store.getCalls.Load() != 0 {
			t.Errorf("expected no cache read under force, got %d", store.getCalls.Load())
		}
		if store.lastUpsert == nil || store.lastUpsert.Vibe != "Regenerated vibe" {
			t.Errorf("expected regenerated document persisted, got %+v", store.lastUpsert)
		}
	})

	t.Run("Cache Fault Treated As Miss", func(t *testing.T) {
		store := &mockStore{getErr: errors.New("disk corrupted")}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if outcome.Document == nil {
			t.Error("expected generation to run despite cache fault")
		}
		if generator.Calls.Load() != 1 {
			t.Errorf("expected 1 generation, got %d", generator.Calls.Load())
		}
	})

	t.Run("Generation Failure Yields Nil Document", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Err: errors.New("model unavailable")}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("expected no request error, got %v", err)
		}
		if outcome.Document != nil {
			t.Error("expected nil document on generation failure")
		}
		if store.upsertCalls.Load() != 0 {
			t.Errorf("expected no persistence, got %d upserts", store.upsertCalls.Load())
		}
	})

	t.Run("Persistence Failure Still Returns Document", func(t *testing.T) {
		store := &mockStore{upsertErr: errors.New("disk full")}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if outcome.Document == nil {
			t.Error("expected unsaved document to be returned")
		}
	})

	t.Run("Cancelled Context Aborts Without Partial Write", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.Analyze(ctx, testTrack(), false)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if store.upsertCalls.Load() != 0 {
			t.Errorf("expected no cache write after cancellation, got %d", store.upsertCalls.Load())
		}
	})
}

func TestAnalysisEngineVideo(t *testing.T) {
	t.Run("Disabled Lookup Is Not Found", func(t *testing.T) {
		store := &mockStore{entry: cachedEntry(t)}
		video := &tu.MockVideoService{Video: &models.VideoReference{VideoID: "v1"}}

		engine := NewAnalysisEngine(EngineOpts{
			Store:       store,
			Generator:   &tu.MockGenerator{Document: tu.ValidDocument()},
			Video:       video,
			VideoLookup: false,
		})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if outcome.Video.Status != models.VideoNotFound {
			t.Errorf("expected VideoNotFound, got %v", outcome.Video.Status)
		}
		if video.Calls.Load() != 0 {
			t.Errorf("expected no video call, got %d", video.Calls.Load())
		}
	})

	t.Run("Nil Service Is Not Found", func(t *testing.T) {
		engine := NewAnalysisEngine(EngineOpts{
			Store:       &mockStore{entry: cachedEntry(t)},
			Generator:   &tu.MockGenerator{Document: tu.ValidDocument()},
			VideoLookup: true,
		})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if outcome.Video.Status != models.VideoNotFound {
			t.Errorf("expected VideoNotFound, got %v", outcome.Video.Status)
		}
	})

	t.Run("Lookup Error Is Failed Not Fatal", func(t *testing.T) {
		video := &tu.MockVideoService{Err: errors.New("quota exceeded")}

		engine := NewAnalysisEngine(EngineOpts{
			Store:       &mockStore{entry: cachedEntry(t)},
			Generator:   &tu.MockGenerator{Document: tu.ValidDocument()},
			Video:       video,
			VideoLookup: true,
		})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("expected video failure to be absorbed, got %v", err)
		}
		if outcome.Video.Status != models.VideoFailed {
			t.Errorf("expected VideoFailed, got %v", outcome.Video.Status)
		}
		if outcome.Document == nil {
			t.Error("expected document despite video failure")
		}
	})

	t.Run("Match Is Found", func(t *testing.T) {
		video := &tu.MockVideoService{Video: &models.VideoReference{VideoID: "v1", Title: "Official Video"}}

		engine := NewAnalysisEngine(EngineOpts{
			Store:       &mockStore{entry: cachedEntry(t)},
			Generator:   &tu.MockGenerator{Document: tu.ValidDocument()},
			Video:       video,
			VideoLookup: true,
		})

		outcome, err := engine.Analyze(context.Background(), testTrack(), false)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if outcome.Video.Status != models.VideoFound {
			t.Errorf("expected VideoFound, got %v", outcome.Video.Status)
		}
		if outcome.Video.Video == nil || outcome.Video.Video.VideoID != "v1" {
			t.Errorf("unexpected video: %+v", outcome.Video.Video)
		}
	})
}

func TestBulkAnalyze(t *testing.T) {
	tracks := []models.Track{
		{ID: "t1", Title: "Song One", Artist: "A"},
		{ID: "t2", Title: "Song Two", Artist: "B"},
		{ID: "t3", Title: "Song Three", Artist: "C"},
	}

	t.Run("Analyzes All Tracks", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		result, err := engine.BulkAnalyze(context.Background(), nil, tracks, BulkAnalyzeOpts{
			NumWorkers: 2,
			RateLimit:  1000,
		})
		if err != nil {
			t.Fatalf("bulk analyze failed: %v", err)
		}

		if result.TotalTracks != 3 {
			t.Errorf("expected 3 total, got %d", result.TotalTracks)
		}
		if result.Analyzed != 3 {
			t.Errorf("expected 3 analyzed, got %d", result.Analyzed)
		}
		if generator.Calls.Load() != 3 {
			t.Errorf("expected 3 generations, got %d", generator.Calls.Load())
		}
	})

	t.Run("Counts Cache Hits", func(t *testing.T) {
		store := &mockStore{entry: cachedEntry(t)}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		result, err := engine.BulkAnalyze(context.Background(), nil, tracks, BulkAnalyzeOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("bulk analyze failed: %v", err)
		}

		if result.CacheHits != 3 {
			t.Errorf("expected 3 cache hits, got %d", result.CacheHits)
		}
		if generator.Calls.Load() != 0 {
			t.Errorf("expected no generations, got %d", generator.Calls.Load())
		}
	})

	t.Run("Counts Failures Without Aborting", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Err: errors.New("model unavailable")}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		result, err := engine.BulkAnalyze(context.Background(), nil, tracks, BulkAnalyzeOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected partial failures to be absorbed, got %v", err)
		}

		if result.FailedCount != 3 {
			t.Errorf("expected 3 failures, got %d", result.FailedCount)
		}
	})

	t.Run("Reports Progress", func(t *testing.T) {
		store := &mockStore{}
		generator := &tu.MockGenerator{Document: tu.ValidDocument()}

		engine := NewAnalysisEngine(EngineOpts{Store: store, Generator: generator})

		prog := make(chan ProgressUpdate, len(tracks))
		if _, err := engine.BulkAnalyze(context.Background(), prog, tracks, BulkAnalyzeOpts{RateLimit: 1000}); err != nil {
			t.Fatalf("bulk analyze failed: %v", err)
		}
		close(prog)

		count := 0
		for update := range prog {
			count++
			if update.Total != 3 {
				t.Errorf("expected total 3, got %d", update.Total)
			}
		}
		if count != 3 {
			t.Errorf("expected 3 progress updates, got %d", count)
		}
	})

	t.Run("Requires Generator", func(t *testing.T) {
		engine := NewAnalysisEngine(EngineOpts{Store: &mockStore{}})

		if _, err := engine.BulkAnalyze(context.Background(), nil, tracks, BulkAnalyzeOpts{}); err == nil {
			t.Error("expected error without generator")
		}
	})
}
