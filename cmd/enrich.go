package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/matching"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Enrich looks up every track behind a Spotify link on Tunebat and writes the report.
//
// A cancelled run still writes (and optionally saves) the rows completed so far.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	link := cmd.String("link")
	ref, err := services.ParseLink(link)
	if err != nil {
		return err
	}

	format, path := r.reportTarget(cmd)
	cfg, err := r.enrichSettings(cmd, format)
	if err != nil {
		return err
	}
	jsonOut := cmd.Bool("json")

	logger := shared.WithLogger(r.logger, "ref", ref.String())
	result, runErr := r.runPipeline(ctx, ref, cfg, logger, !jsonOut)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted, writing partial report", "rows", len(result.Rows), "error", runErr)
	}

	written, err := formatter.WriteReport(result.Rows, format, path)
	if err != nil {
		return err
	}
	logger.Info("report written", "path", written, "format", format)

	var saved *models.Report
	if cmd.Bool("save") {
		if saved, err = r.saveReport(link, ref, result.Rows); err != nil {
			return err
		}
	}

	if jsonOut {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
		return runErr
	}

	r.writeEnrichSummary(result, written, saved)
	return runErr
}

// runPipeline fetches the tracks behind ref and enriches them with the given settings.
func (r *Runner) runPipeline(ctx context.Context, ref models.Reference, cfg shared.EnrichConfig, logger *log.Logger, visible bool) (*tasks.EnrichResult, error) {
	source, err := r.trackSource(ctx)
	if err != nil {
		return nil, err
	}

	scorer, err := matching.NewScorer(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	fetcher := tasks.NewFetcher(r.searchService(), matching.NewSelector(scorer, cfg.Threshold), cfg, logger)
	engine := tasks.NewEnrichmentEngine(source, fetcher, cfg, logger)
	if r.sleep != nil {
		fetcher.Sleep = r.sleep
		engine.Sleep = r.sleep
	}

	logger.Info("starting enrichment", "batch_size", engine.BatchSize, "batch_delay", engine.BatchDelay, "algorithm", cfg.Algorithm)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.renderProgress(progressCh, done, visible)

	result, err := engine.Run(ctx, ref, progressCh)
	close(progressCh)
	<-done
	return result, err
}

// enrichSettings overlays command flags on the configured pipeline settings.
func (r *Runner) enrichSettings(cmd *cli.Command, format string) (shared.EnrichConfig, error) {
	cfg := r.config.Enrich
	if cmd.IsSet("batch-size") {
		cfg.BatchSize = cmd.Int("batch-size")
	}
	if cmd.IsSet("batch-delay") {
		cfg.BatchDelayMS = int(cmd.Duration("batch-delay") / time.Millisecond)
	}
	if cmd.IsSet("threshold") {
		cfg.Threshold = cmd.Float("threshold")
	}
	if cmd.IsSet("algorithm") {
		cfg.Algorithm = cmd.String("algorithm")
	}

	check := *r.config
	check.Enrich = cfg
	check.Report.Format = format
	if err := check.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// reportTarget resolves the report format and path from flags and config.
//
// When only --format is given the configured path keeps its name and takes the format's extension.
func (r *Runner) reportTarget(cmd *cli.Command) (string, string) {
	format := r.config.Report.Format
	if cmd.IsSet("format") {
		format = cmd.String("format")
	}

	path := r.config.Report.Path
	if cmd.IsSet("output") {
		path = cmd.String("output")
	} else if path != "" && cmd.IsSet("format") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + formatter.Extension(format)
	}
	return format, path
}

// renderProgress prints engine updates until progress is closed.
func (r *Runner) renderProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}, visible bool) {
	defer close(done)

	var bar *progressbar.ProgressBar
	for update := range progress {
		if !visible {
			continue
		}

		switch update.Phase {
		case tasks.FetchSource:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.SearchTracks:
			r.writePlain("🔍 %s\n", update.Message)
			bar = ui.NewProgressBar(r.output, update.Total, "Enriching")
		case tasks.Batch, tasks.BatchPause:
			r.logger.Debug(update.Message, "phase", update.Phase.String())
		case tasks.TrackDone:
			r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			if bar != nil {
				bar.Add(1)
			}
		}
	}

	if bar != nil && !bar.IsFinished() {
		bar.Finish()
	}
}

// saveReport stores the run in the history database.
func (r *Runner) saveReport(link string, ref models.Reference, rows []models.ResultRow) (*models.Report, error) {
	db, err := r.openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	report := models.NewReport(0, link, ref, rows)
	if err := repositories.NewReportRepository(db).Create(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	r.logger.Info("report saved", "id", report.ID(), "sequence", report.Sequence())
	return report, nil
}

func (r *Runner) writeEnrichSummary(result *tasks.EnrichResult, path string, saved *models.Report) {
	styles := ui.Styles()
	total := len(result.Rows)

	r.writePlain("\n")
	r.writePlainHeader(styles.Title("Enrichment Complete!"))

	rate := fmt.Sprintf("%d/%d (%.1f%%)", result.MatchedCount, total, result.MatchPercentage)
	pairs := [][]string{
		{"Source", result.Reference.String()},
		{"Tracks", fmt.Sprintf("%d", total)},
		{"Matched", styles.Rate(result.MatchPercentage, rate)},
		{"Report", path},
		{"Elapsed", result.Elapsed.Round(time.Second).String()},
	}
	if saved != nil {
		pairs = append(pairs, []string{"Saved", fmt.Sprintf("#%d", saved.Sequence())})
	}
	ui.RenderKeyValues(r.output, pairs)

	if total < len(result.Tracks) {
		r.writePlainln("%s", styles.Warn(fmt.Sprintf("Interrupted after %d of %d tracks", total, len(result.Tracks))))
	}

	if result.UnmatchedCount > 0 {
		r.writePlainln("%s", styles.Warn(fmt.Sprintf("No Tunebat data for %d tracks:", result.UnmatchedCount)))
		for _, row := range result.Rows {
			if !row.Available() {
				r.writePlain("  - %s - %s\n", row.Artist, row.Song)
			}
		}
	}
}
