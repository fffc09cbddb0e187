package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("ignoring config file", "path", defaultConfigPath, "error", err)
		}
	}
	config.ApplyEnv()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:    "setlist",
		Usage:   "Enrich Spotify playlists and tracks with BPM, key, duration and energy from Tunebat",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every Tunebat attempt and batch",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Warn("interrupted")
			os.Exit(130)
		case errors.Is(err, shared.ErrMissingCredentials):
			logger.Fatal("spotify credentials are not configured", "hint", "run 'setlist setup config --client-id ... --client-secret ...'", "error", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
