package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
	"golang.org/x/time/rate"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	CheckCache Phase = iota
	GenerateAnalysis
	PersistAnalysis
)

func (p Phase) String() string {
	switch p {
	case CheckCache:
		return "check_cache"
	case GenerateAnalysis:
		return "generate_analysis"
	case PersistAnalysis:
		return "persist_analysis"
	default:
		return ""
	}
}

// BulkAnalyzeOpts contains configuration for bulk cache warming.
type BulkAnalyzeOpts struct {
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Generations per second (default: 0.5)
	Force      bool    // Regenerate even for cached fingerprints
}

// TrackAnalysisResult is the per-track outcome of a bulk run.
type TrackAnalysisResult struct {
	Track     models.Track
	FromCache bool
	Error     error
}

// BulkAnalyzeResult summarizes a bulk cache-warming run.
type BulkAnalyzeResult struct {
	TotalTracks int
	Analyzed    int // Freshly generated documents
	CacheHits   int
	FailedCount int
	Results     []TrackAnalysisResult
}

// BulkAnalyze precomputes analyses for multiple tracks concurrently with rate
// limiting and progress tracking.
//
// The AI provider is the expensive collaborator here, so the limiter paces the
// whole pipeline rather than individual HTTP calls. Partial failures are
// recorded per track and never abort the run.
func (e *AnalysisEngine) BulkAnalyze(ctx context.Context, prog chan<- ProgressUpdate, tracks []models.Track, opts BulkAnalyzeOpts) (*BulkAnalyzeResult, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 0.5
	}

	result := &BulkAnalyzeResult{
		TotalTracks: len(tracks),
		Results:     make([]TrackAnalysisResult, 0, len(tracks)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Track, len(tracks))
	results := make(chan TrackAnalysisResult, len(tracks))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.bulkWorker(ctx, &wg, limiter, jobs, results, opts.Force)
	}

	for _, track := range tracks {
		jobs <- track
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	step := 0
	for res := range results {
		step++
		result.Results = append(result.Results, res)

		switch {
		case res.Error != nil:
			result.FailedCount++
		case res.FromCache:
			result.CacheHits++
		default:
			result.Analyzed++
		}

		sendProgress(prog, ProgressUpdate{
			Phase:   GenerateAnalysis,
			Step:    step,
			Total:   len(tracks),
			Message: fmt.Sprintf("Analyzed %s by %s", res.Track.Title, res.Track.Artist),
		})
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// bulkWorker analyzes tracks from the jobs channel until it closes or ctx is cancelled.
func (e *AnalysisEngine) bulkWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan models.Track, results chan<- TrackAnalysisResult, force bool) {
	defer wg.Done()

	for track := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- TrackAnalysisResult{Track: track, Error: err}
			continue
		}

		outcome, err := e.Analyze(ctx, track, force)
		if err != nil {
			results <- TrackAnalysisResult{Track: track, Error: err}
			continue
		}

		res := TrackAnalysisResult{Track: track, FromCache: outcome.FromCache}
		if outcome.Document == nil {
			res.Error = shared.ErrGenerationFailed
		}
		results <- res
	}
}

// sendProgress sends a progress update without blocking.
//
// Uses select with default so progress reporting never stalls the pipeline.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}

	select {
	case progress <- update:
	default:
	}
}
