package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/desertthunder/lyriq/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for song search and analysis.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if r.search == nil {
		return fmt.Errorf("%w: search service not initialized, set credentials.spotify", shared.ErrServiceUnavailable)
	}

	repo, cleanup, err := r.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lyriq-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.buildEngine(repo)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.search, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
