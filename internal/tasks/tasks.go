package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/services"
	"github.com/desertthunder/lyriq/internal/shared"
)

// AnalysisStore is the persistence capability the engine needs.
// Implemented by repositories.AnalysisRepository.
type AnalysisStore interface {
	// GetByFingerprint returns the cached entry for a (title, artist) pair,
	// (nil, nil) on miss, or an error for transport faults.
	GetByFingerprint(title, artist string) (*models.AnalyzedSong, error)

	// Upsert stores a document for a track, replacing any entry with the same
	// fingerprint, and returns the entry identifier.
	Upsert(track models.TrackSnapshot, document models.AnalysisDocument) (string, error)
}

// AnalysisOutcome is the merged result of one analysis request.
type AnalysisOutcome struct {
	Document  *models.AnalysisDocument // nil when generation failed and nothing was cached
	Video     models.VideoResult
	FromCache bool
}

// AnalysisEngine orchestrates cache lookup, generation, persistence and video
// matching for a selected track.
type AnalysisEngine struct {
	store       AnalysisStore
	generator   services.Generator
	video       services.VideoService
	videoLookup bool
	logger      *log.Logger
}

// EngineOpts contains configuration options for creating an AnalysisEngine.
type EngineOpts struct {
	Store     AnalysisStore
	Generator services.Generator

	// Video may be nil; VideoLookup additionally gates the call so a
	// deployment can carry a configured service but keep the step disabled
	// by policy.
	Video       services.VideoService
	VideoLookup bool

	Logger *log.Logger
}

// NewAnalysisEngine creates a new AnalysisEngine with the provided collaborators.
func NewAnalysisEngine(opts EngineOpts) *AnalysisEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &AnalysisEngine{
		store:       opts.Store,
		generator:   opts.Generator,
		video:       opts.Video,
		videoLookup: opts.VideoLookup,
		logger:      opts.Logger,
	}
}

// Analyze resolves an analysis for the given track, cache first.
//
// With force false, a valid cached document short-circuits generation
// entirely. On a miss (or with force true) the generator runs synchronously,
// which can take many seconds, and a successful document is upserted,
// unconditionally overwriting any existing entry for the fingerprint.
//
// Only the absence of any document makes the outcome degraded; video lookup
// failures and persistence failures are absorbed here. Analyze itself returns
// an error only when ctx is cancelled, so a cancelled generation never leaves
// a partial cache write.
func (e *AnalysisEngine) Analyze(ctx context.Context, track models.Track, force bool) (*AnalysisOutcome, error) {
	videoCh := make(chan models.VideoResult, 1)
	go func() {
		videoCh <- e.lookupVideo(ctx, track)
	}()

	outcome := &AnalysisOutcome{}

	if !force {
		if cached := e.lookupCache(track); cached != nil {
			doc := cached.Document()
			outcome.Document = &doc
			outcome.FromCache = true
		}
	}

	if outcome.Document == nil {
		doc, err := e.generator.Generate(ctx, track.Title, track.Artist)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			// Terminal for this request; the caller renders a "not found"
			// state rather than an error.
			e.logger.Error("analysis generation failed", "title", track.Title, "artist", track.Artist, "error", err)
		} else {
			outcome.Document = doc
			e.persist(track, *doc)
		}
	}

	outcome.Video = <-videoCh
	return outcome, nil
}

// lookupCache returns the cached entry for a track, treating store faults as misses.
func (e *AnalysisEngine) lookupCache(track models.Track) *models.AnalyzedSong {
	cached, err := e.store.GetByFingerprint(track.Title, track.Artist)
	if err != nil {
		e.logger.Warn("cache lookup failed, treating as miss", "title", track.Title, "artist", track.Artist, "error", err)
		return nil
	}
	if cached == nil {
		e.logger.Info("cache miss", "title", track.Title, "artist", track.Artist)
		return nil
	}

	e.logger.Info("cache hit", "title", track.Title, "artist", track.Artist, "entry", cached.ID())
	return cached
}

// persist upserts a freshly generated document, swallowing store faults.
func (e *AnalysisEngine) persist(track models.Track, document models.AnalysisDocument) {
	id, err := e.store.Upsert(models.SnapshotOf(track), document)
	if err != nil {
		e.logger.Warn("failed to persist analysis, returning unsaved document", "title", track.Title, "artist", track.Artist, "error", err)
		return
	}

	e.logger.Info("analysis persisted", "title", track.Title, "artist", track.Artist, "entry", id)
}

// lookupVideo runs the optional video match, mapping every outcome to a
// sentinel state so it can never abort the request.
func (e *AnalysisEngine) lookupVideo(ctx context.Context, track models.Track) models.VideoResult {
	if !e.videoLookup || e.video == nil {
		return models.VideoResult{Status: models.VideoNotFound}
	}

	ref, err := e.video.Search(ctx, track.Title, track.Artist)
	if err != nil {
		e.logger.Warn("video lookup failed", "title", track.Title, "artist", track.Artist, "error", err)
		return models.VideoResult{Status: models.VideoFailed}
	}
	if ref == nil {
		return models.VideoResult{Status: models.VideoNotFound}
	}

	return models.VideoResult{Status: models.VideoFound, Video: ref}
}
