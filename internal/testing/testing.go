// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/lyriq/internal/models"
)

// MockSearchService is a test double for [services.SearchService]
type MockSearchService struct {
	Tracks []models.Track
	Err    error
	Calls  atomic.Int64
}

func (m *MockSearchService) Search(ctx context.Context, query string) ([]models.Track, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockSearchService) Name() string { return "mock_search" }

// MockGenerator is a test double for [services.Generator]
type MockGenerator struct {
	Document *models.AnalysisDocument
	Err      error
	Calls    atomic.Int64
}

func (m *MockGenerator) Generate(ctx context.Context, title, artist string) (*models.AnalysisDocument, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Document, nil
}

func (m *MockGenerator) Name() string { return "mock_generator" }

// MockVideoService is a test double for [services.VideoService]
type MockVideoService struct {
	Video *models.VideoReference
	Err   error
	Calls atomic.Int64
}

func (m *MockVideoService) Search(ctx context.Context, title, artist string) (*models.VideoReference, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Video, nil
}

func (m *MockVideoService) Name() string { return "mock_video" }

// ValidDocument returns a minimal analysis document that passes validation.
func ValidDocument() *models.AnalysisDocument {
	return &models.AnalysisDocument{
		Vibe:     "Melancholic synth pop",
		Overview: "A reflection on distance and memory.",
		Analysis: []models.AnalysisSection{
			{Section: "Verse 1", LyricsQuote: "city lights fade out", Content: "The narrator watches a relationship recede."},
			{Section: "Chorus", LyricsQuote: "call me when you land", Content: "A plea for continued connection."},
		},
		Metaphors: []models.Metaphor{
			{Phrase: "city lights", Meaning: "The shared life being left behind."},
		},
		CoreMessage: "Distance tests but does not define connection.",
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
