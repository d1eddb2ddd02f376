package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := defaultConfigPath
	if p, ok := os.LookupEnv("SOUNDSLATE_CONFIG"); ok && p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}

	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	} else {
		logger.Warn("ignoring log level", "error", err)
	}

	var spotifyService services.Service
	if svc, err := services.NewSpotifyService(config.Spotify, nil); err == nil {
		spotifyService = svc
	} else {
		logger.Debug("spotify service unavailable", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Service:    spotifyService,
		Store:      session.NewFileStore(config.Session.Path),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "soundslate",
		Usage:    "Visualize your Spotify top tracks and artists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
			logger.Error(err.Error())
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
