package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/desertthunder/lyriq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Analyze runs the cache-first analysis pipeline for a single song.
//
// When the catalog provider is configured the track metadata is resolved
// through it first, so cached entries carry artwork and catalog IDs.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	track := models.Track{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	}

	if r.search != nil {
		if resolved, err := r.resolveTrack(ctx, track.Title, track.Artist); err != nil {
			r.logger.Warn("catalog lookup failed, analyzing without metadata", "error", err)
		} else if resolved != nil {
			track = *resolved
		}
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := r.buildEngine(repo)
	if err != nil {
		return err
	}

	r.logger.Info("analyzing song", "title", track.Title, "artist", track.Artist, "force", cmd.Bool("force"))

	outcome, err := engine.Analyze(ctx, track, cmd.Bool("force"))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(outcome, cmd.Bool("pretty"))
	}

	return r.printOutcome(track, outcome)
}

// AnalyzeBulk searches the catalog and warms the cache for every result.
func (r *Runner) AnalyzeBulk(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	if r.search == nil {
		return fmt.Errorf("%w: search service not initialized, set credentials.spotify", shared.ErrServiceUnavailable)
	}

	tracks, err := r.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(tracks) == 0 {
		r.writePlainln("No tracks found for '%s'", query)
		return nil
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := r.buildEngine(repo)
	if err != nil {
		return err
	}

	opts := tasks.BulkAnalyzeOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Force:      cmd.Bool("force"),
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Analysis.BulkWorkers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Analysis.BulkRateLimit
	}

	r.writePlainln("Analyzing %d tracks...", len(tracks))

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := engine.BulkAnalyze(ctx, prog, tracks, opts)
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("bulk analysis failed: %w", err)
	}

	r.writePlainln("Done: %d analyzed, %d cached, %d failed (of %d)",
		result.Analyzed, result.CacheHits, result.FailedCount, result.TotalTracks)

	return nil
}

// resolveTrack picks the first catalog match for the title/artist pair.
func (r *Runner) resolveTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	tracks, err := r.search.Search(ctx, fmt.Sprintf("%s %s", title, artist))
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

// printOutcome renders an analysis outcome as plain text.
func (r *Runner) printOutcome(track models.Track, outcome *tasks.AnalysisOutcome) error {
	if outcome.Document == nil {
		r.writePlainln("No analysis could be generated for '%s' by %s", track.Title, track.Artist)
		return nil
	}

	doc := outcome.Document

	r.writePlainln("%s - %s", track.Artist, track.Title)
	if outcome.FromCache {
		r.writePlain("(cached)\n")
	}
	r.writePlain("\nVibe: %s\n\n%s\n", doc.Vibe, doc.Overview)

	for _, section := range doc.Analysis {
		r.writePlain("\n[%s]\n", section.Section)
		r.writePlain("  \"%s\"\n", section.LyricsQuote)
		r.writePlain("  %s\n", section.Content)
	}

	if len(doc.Metaphors) > 0 {
		r.writePlain("\nMetaphors:\n")
		for _, meta := range doc.Metaphors {
			r.writePlain("  • %s: %s\n", meta.Phrase, meta.Meaning)
		}
	}

	r.writePlain("\nCore message: %s\n", doc.CoreMessage)

	if outcome.Video.Status == models.VideoFound && outcome.Video.Video != nil {
		r.writePlain("\nVideo: https://www.youtube.com/watch?v=%s\n", outcome.Video.Video.VideoID)
	}

	return nil
}
