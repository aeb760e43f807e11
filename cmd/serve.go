package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lyriq/internal/server"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the analysis HTTP server and blocks until SIGINT/SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if r.search == nil {
		return fmt.Errorf("%w: search service not initialized, set credentials.spotify", shared.ErrServiceUnavailable)
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

	router := server.NewBasicRouter()
	router.Use(server.Recovery(r.logger), server.Logging(r.logger))
	router.Handler(server.NewSearchHandler(r.search, r.logger))
	router.Handler(server.NewAnalyzeHandler(engine, r.logger))
	router.Handler(&server.HealthHandler{})

	host := r.config.Server.Host
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	port := r.config.Server.Port
	if flagPort := int(cmd.Int("port")); flagPort != 0 {
		port = flagPort
	}

	srv := server.NewServer(host, port, router, r.logger)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(runCtx)
}
