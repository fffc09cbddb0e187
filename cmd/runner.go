package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.TrackSource
	search     services.SearchService
	sleep      tasks.Sleeper
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.TrackSource   // Built from config on first use when nil
	Search     services.SearchService // Built from config on first use when nil
	Sleep      tasks.Sleeper          // Overrides every wait in the pipeline
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		search:     opts.Search,
		sleep:      opts.Sleep,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		enrichCommand, linkCommand, tunebatCommand, spotifyCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// trackSource returns the configured source, authenticating a Spotify client on first use.
func (r *Runner) trackSource(ctx context.Context) (services.TrackSource, error) {
	if r.source != nil {
		return r.source, nil
	}
	if !r.config.HasSpotifyCredentials() {
		return nil, fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or [credentials.spotify] in config.toml", shared.ErrMissingCredentials)
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}
	if err := svc.Authenticate(ctx); err != nil {
		return nil, err
	}
	r.source = svc
	return svc, nil
}

// searchService returns the configured search service.
func (r *Runner) searchService() services.SearchService {
	if r.search == nil {
		r.search = services.NewTunebatService(r.config.Tunebat.BaseURL, r.config.Tunebat.Timeout())
	}
	return r.search
}

// openStore opens the history database and applies pending migrations.
func (r *Runner) openStore() (*sql.DB, error) {
	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
