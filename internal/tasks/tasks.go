package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = 5 * time.Second
)

// EnrichResult summarizes one enrichment run.
type EnrichResult struct {
	Reference       models.Reference   `json:"reference"`        // Parsed link
	Tracks          []models.Track     `json:"-"`                // Tracks returned by the source
	Rows            []models.ResultRow `json:"rows"`             // One row per track, in source order
	MatchedCount    int                `json:"matched"`          // Rows carrying Tunebat data
	UnmatchedCount  int                `json:"unmatched"`        // Rows filled with N/A
	MatchPercentage float64            `json:"match_percentage"` // Matched share as percentage
	Elapsed         time.Duration      `json:"elapsed_ns"`       // Wall time of the run
}

// Engine defines the enrichment operations.
type Engine interface {
	// Run resolves ref on the track source and enriches every track.
	Run(ctx context.Context, ref models.Reference, progress chan<- ProgressUpdate) (*EnrichResult, error)

	// ProcessAll enriches tracks in fixed-size concurrent batches, preserving order.
	ProcessAll(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) ([]models.ResultRow, error)
}

// EnrichmentEngine implements [Engine].
type EnrichmentEngine struct {
	source     services.TrackSource
	fetcher    *Fetcher
	BatchSize  int
	BatchDelay time.Duration
	Sleep      Sleeper
	logger     *log.Logger
}

// NewEnrichmentEngine creates a new EnrichmentEngine with the provided collaborators.
func NewEnrichmentEngine(source services.TrackSource, fetcher *Fetcher, cfg shared.EnrichConfig, logger *log.Logger) *EnrichmentEngine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	e := &EnrichmentEngine{
		source:     source,
		fetcher:    fetcher,
		BatchSize:  cfg.BatchSize,
		BatchDelay: cfg.BatchDelay(),
		Sleep:      SleepContext,
		logger:     logger,
	}
	if e.BatchSize <= 0 {
		e.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelayMS < 0 {
		e.BatchDelay = DefaultBatchDelay
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *EnrichmentEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run fetches the tracks behind ref and enriches them.
func (e *EnrichmentEngine) Run(ctx context.Context, ref models.Reference, progress chan<- ProgressUpdate) (*EnrichResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: track source not initialized", shared.ErrServiceUnavailable)
	}

	start := time.Now()
	e.sendProgress(progress, fetchSourceUpdate(ref))

	tracks, err := e.source.Tracks(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrNoTracks, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoTracks, ref)
	}
	e.logger.Info("fetched tracks", "source", e.source.Name(), "ref", ref.String(), "count", len(tracks))

	rows, err := e.ProcessAll(ctx, tracks, progress)
	result := &EnrichResult{
		Reference: ref,
		Tracks:    tracks,
		Rows:      rows,
		Elapsed:   time.Since(start),
	}
	for _, row := range rows {
		if row.Available() {
			result.MatchedCount++
		}
	}
	result.UnmatchedCount = len(rows) - result.MatchedCount
	if len(rows) > 0 {
		result.MatchPercentage = float64(result.MatchedCount) / float64(len(rows)) * 100
	}
	return result, err
}

// ProcessAll enriches tracks group by group.
//
// Tracks within a group are fetched concurrently; groups run one after another
// with BatchDelay between them. Rows come back in input order. When ctx is
// cancelled the rows of completed groups are returned with ctx.Err(); a group
// interrupted mid-flight contributes nothing.
func (e *EnrichmentEngine) ProcessAll(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) ([]models.ResultRow, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher not initialized", shared.ErrServiceUnavailable)
	}

	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	sleep := e.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	total := len(tracks)
	groups := (total + size - 1) / size
	rows := make([]models.ResultRow, 0, total)

	e.sendProgress(progress, searchTracksUpdate(total))

	for g := range groups {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		lo := g * size
		hi := min(lo+size, total)
		group := tracks[lo:hi]

		e.sendProgress(progress, batchUpdate(g+1, groups, len(group)))
		e.logger.Debug("processing batch", "batch", g+1, "of", groups, "size", len(group))

		out := make([]models.ResultRow, len(group))
		var wg sync.WaitGroup
		for i, track := range group {
			wg.Add(1)
			go func(i int, track models.Track) {
				defer wg.Done()
				out[i] = ToRow(track, e.fetcher.Fetch(ctx, track.Artist, track.Title))
				e.sendProgress(progress, trackDoneUpdate(lo+i+1, total, out[i]))
			}(i, track)
		}
		wg.Wait()

		// Lookups cut short by cancellation come back as no-match rows; drop the group.
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		rows = append(rows, out...)

		if g < groups-1 {
			e.sendProgress(progress, batchPauseUpdate(g+1, groups, e.BatchDelay))
			if err := sleep(ctx, e.BatchDelay); err != nil {
				return rows, err
			}
		}
	}
	return rows, nil
}

// ToRow maps a lookup outcome to a report row.
func ToRow(track models.Track, match models.MatchResult) models.ResultRow {
	row := models.ResultRow{
		Song:     track.Title,
		Artist:   track.Artist,
		BPM:      models.Unavailable,
		Key:      models.Unavailable,
		Duration: models.Unavailable,
		Energy:   models.Unavailable,
	}
	if !match.Matched() {
		return row
	}

	c := match.Candidate
	row.BPM = models.FormatNumber(c.BPM)
	if c.Key != "" {
		row.Key = string(c.Key)
	}
	row.Duration = shared.FormatDuration(c.DurationMS)
	row.Energy = models.FormatNumber(c.Energy)
	return row
}
