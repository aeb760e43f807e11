package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyriq/internal/formatter"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheList lists cached analyses, newest first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := repo.List(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}

	if cmd.Bool("csv") {
		data, err := formatter.ExportToCSV(entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if cmd.Bool("json") {
		summaries := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			track := entry.Track()
			summaries = append(summaries, map[string]any{
				"id":        entry.ID(),
				"title":     track.Title,
				"artist":    track.Artist,
				"updatedAt": entry.UpdatedAt(),
			})
		}
		return r.writeJSON(summaries, true)
	}

	if len(entries) == 0 {
		r.writePlainln("Cache is empty")
		return nil
	}

	r.writePlainln("%d cached analyses:", len(entries))
	for _, entry := range entries {
		track := entry.Track()
		r.writePlain("  %s  %s - %s  (updated %s)\n",
			entry.ID(), track.Artist, track.Title, entry.UpdatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}

// CacheShow prints a single cached analysis.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := repo.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get cache entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("%w: %s", shared.ErrAnalysisNotFound, id)
	}

	if cmd.Bool("json") {
		doc := entry.Document()
		return r.writeJSON(&doc, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(entry)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// CacheDelete removes a cached analysis.
func (r *Runner) CacheDelete(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	r.logger.Info("cache entry deleted", "id", id)
	r.writePlainln("✓ Deleted %s", id)

	return nil
}

// CacheExport writes a cached analysis to disk as Markdown or plain text.
func (r *Runner) CacheExport(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := repo.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get cache entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("%w: %s", shared.ErrAnalysisNotFound, id)
	}

	switch format := cmd.String("format"); format {
	case "md":
		result, err := formatter.WriteMarkdownExport(entry, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported to %s", result.Directory)
		for _, file := range result.Files {
			r.writePlain("  %s\n", file)
		}
	case "txt":
		path, err := formatter.WriteTextExport(entry, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported to %s", path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	return nil
}
