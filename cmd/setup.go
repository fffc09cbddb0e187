package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config file from the embedded template, optionally filling in Spotify credentials.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	clientID := cmd.String("client-id")
	clientSecret := cmd.String("client-secret")

	_, statErr := os.Stat(configPath)
	exists := statErr == nil

	if exists && !cmd.Bool("force") && clientID == "" && clientSecret == "" {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
	}

	if !exists || cmd.Bool("force") {
		if exists {
			if err := os.Remove(configPath); err != nil {
				return fmt.Errorf("failed to remove existing config: %w", err)
			}
		}
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
	}

	if clientID != "" || clientSecret != "" {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if clientID != "" {
			config.Credentials.Spotify.ClientID = clientID
		}
		if clientSecret != "" {
			config.Credentials.Spotify.ClientSecret = clientSecret
		}
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
		r.logger.Info("spotify credentials saved", "path", configPath)
	}

	return r.writePlain("%s Config written to %s\n", ui.Styles().OK("✓"), configPath)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using current settings", "error", err)
			config = r.config
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using current settings", "error", err)
		} else if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	if cmd.IsSet("path") {
		config.Database.Path = cmd.String("path")
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenStore(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.logger.Warn("rolled back latest migration", "path", config.Database.Path)
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("%s Database ready at %s (migrations: %v)\n", ui.Styles().OK("✓"), config.Database.Path, versions)
}
