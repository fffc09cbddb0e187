package tasks

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/matching"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultJitter      = 500 * time.Millisecond
	DefaultMaxAttempts = 5

	backoffUnit = time.Second
	backoffCap  = 5 * time.Second
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Jitter returns a random duration in [0, max).
type Jitter func(max time.Duration) time.Duration

// SleepContext is the default [Sleeper].
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomJitter is the default [Jitter].
func RandomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}

// Backoff returns the wait after a failed attempt n (1-based): 1.5^n seconds, capped at 5s.
func Backoff(n int) time.Duration {
	d := time.Duration(math.Pow(1.5, float64(n)) * float64(backoffUnit))
	return min(d, backoffCap)
}

// Fetcher looks up a single track on the search service with bounded retries.
type Fetcher struct {
	Search      services.SearchService
	Selector    *matching.Selector
	Sleep       Sleeper
	Jitter      Jitter
	BaseDelay   time.Duration
	JitterMax   time.Duration
	MaxAttempts int
	Logger      *log.Logger

	// OnAttempt, when set, is called before every query.
	OnAttempt func(models.Attempt)
}

// NewFetcher creates a Fetcher with the timing taken from cfg.
//
// Zero values in cfg fall back to the package defaults.
func NewFetcher(search services.SearchService, selector *matching.Selector, cfg shared.EnrichConfig, logger *log.Logger) *Fetcher {
	f := &Fetcher{
		Search:      search,
		Selector:    selector,
		Sleep:       SleepContext,
		Jitter:      RandomJitter,
		BaseDelay:   cfg.BaseDelay(),
		JitterMax:   cfg.Jitter(),
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger,
	}
	if cfg.BaseDelayMS <= 0 {
		f.BaseDelay = DefaultBaseDelay
	}
	if cfg.JitterMS <= 0 {
		f.JitterMax = DefaultJitter
	}
	if f.MaxAttempts <= 0 {
		f.MaxAttempts = DefaultMaxAttempts
	}
	return f
}

// Fetch searches for "{artist} {title}" and selects the best match for title.
//
// It never returns an error: exhausted retries and cancellation both produce a no-match.
func (f *Fetcher) Fetch(ctx context.Context, artist, title string) models.MatchResult {
	sleep := f.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	jitter := f.Jitter
	if jitter == nil {
		jitter = RandomJitter
	}
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	selector := f.Selector
	if selector == nil {
		selector = matching.NewSelector(nil, 0)
	}
	logger := f.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}

	attempt := models.Attempt{Number: 1, Query: artist + " " + title}
	for {
		if err := sleep(ctx, f.BaseDelay+jitter(f.JitterMax)); err != nil {
			return models.NoMatch(0)
		}

		if f.OnAttempt != nil {
			f.OnAttempt(attempt)
		}
		logger.Debug("searching", "query", attempt.Query, "attempt", attempt.Number)

		results, err := f.Search.Search(ctx, attempt.Query)
		if err == nil {
			match := selector.Select(results, title)
			if !match.Matched() {
				logger.Info("no match", "title", title, "artist", artist, "best", match.Score)
			}
			return match
		}

		if attempt.Number >= maxAttempts {
			logger.Warn("giving up", "query", attempt.Query, "attempts", attempt.Number, "err", err)
			return models.NoMatch(0)
		}

		var wait time.Duration
		var rl *shared.RateLimitError
		if errors.As(err, &rl) {
			wait = rl.RetryAfter + time.Duration(attempt.Number)*time.Second
			logger.Warn("rate limited", "query", attempt.Query, "attempt", attempt.Number, "wait", wait)
		} else {
			wait = Backoff(attempt.Number)
			logger.Warn("search failed", "query", attempt.Query, "attempt", attempt.Number, "wait", wait, "err", err)
		}

		if err := sleep(ctx, wait); err != nil {
			return models.NoMatch(0)
		}
		attempt.Number++
	}
}
