package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog provider and prints matching tracks.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	if r.search == nil {
		return fmt.Errorf("%w: search service not initialized, set credentials.spotify", shared.ErrServiceUnavailable)
	}

	r.logger.Info("searching catalog", "query", query)

	tracks, err := r.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		r.writePlainln("No tracks found for '%s'", query)
		return nil
	}

	r.writePlainln("Found %d tracks:", len(tracks))
	for i, track := range tracks {
		album := ""
		if track.Album != "" {
			album = fmt.Sprintf(" (%s)", track.Album)
		}
		r.writePlain("%2d. %s - %s%s\n", i+1, track.Artist, track.Title, album)
	}

	return nil
}
