// package services defines interfaces for interacting with HTTP APIs
//
// Spotify (catalog search), YouTube (video lookup), Gemini (lyric analysis)
package services

import (
	"context"

	"github.com/desertthunder/lyriq/internal/models"
)

// SearchService defines free-text track catalog search.
//
// Search is a primary, user-visible action with no cache fallback, so
// failures propagate to the caller instead of degrading.
type SearchService interface {
	// Search queries the catalog and returns normalized track summaries.
	Search(ctx context.Context, query string) ([]models.Track, error)

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// VideoService defines best-match video lookup for a song.
//
// A (nil, nil) return means the lookup ran and found nothing; an error means
// the provider failed. Callers map the two onto distinct degraded states and
// never treat either as a request failure.
type VideoService interface {
	// Search finds the best matching video for a title and artist.
	Search(ctx context.Context, title, artist string) (*models.VideoReference, error)

	// Name returns the provider name (e.g., "YouTube")
	Name() string
}

// Generator defines AI lyric analysis.
//
// Generate performs web search, page retrieval and reasoning inside the
// provider and may take many seconds; callers must not impose a short
// timeout. Cancelling ctx aborts the underlying provider call.
type Generator interface {
	// Generate produces a schema-valid analysis document for a song, or an
	// error when the provider fails or returns output that does not validate.
	Generate(ctx context.Context, title, artist string) (*models.AnalysisDocument, error)

	// Name returns the provider name (e.g., "Gemini")
	Name() string
}
