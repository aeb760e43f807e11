package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/lyriq/internal/services"
	"github.com/desertthunder/lyriq/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var searchService services.SearchService
	var videoService services.VideoService
	var generator services.Generator

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
		}); err == nil {
			searchService = svc
		}
	}

	if config.Credentials.YouTube.APIKey != "" {
		videoService = services.NewYouTubeService(config.Credentials.YouTube.APIKey)
	}

	if config.Credentials.Gemini.APIKey != "" {
		generator = services.NewGeminiService(config.Credentials.Gemini.APIKey, config.Credentials.Gemini.Model, logger)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Search:    searchService,
		Video:     videoService,
		Generator: generator,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "lyriq",
		Usage:    "Search songs and analyze their lyrics",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
