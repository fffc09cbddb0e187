package tasks

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/matching"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

func newTestFetcher(search *tu.MockSearch, sleeper *tu.RecordingSleeper) *Fetcher {
	f := NewFetcher(search, matching.NewSelector(nil, 0), shared.EnrichConfig{}, shared.NopLogger())
	f.Sleep = sleeper.Sleep
	f.Jitter = func(time.Duration) time.Duration { return 0 }
	return f
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, ms(1500)},
		{2, ms(2250)},
		{3, ms(3375)},
		{4, ms(5000)},
		{5, ms(5000)},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestNewFetcher(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		f := NewFetcher(&tu.MockSearch{}, nil, shared.EnrichConfig{}, nil)
		if f.BaseDelay != DefaultBaseDelay || f.JitterMax != DefaultJitter || f.MaxAttempts != DefaultMaxAttempts {
			t.Errorf("unexpected defaults: base=%s jitter=%s attempts=%d", f.BaseDelay, f.JitterMax, f.MaxAttempts)
		}
	})

	t.Run("reads config", func(t *testing.T) {
		cfg := shared.EnrichConfig{BaseDelayMS: 100, JitterMS: 50, MaxAttempts: 3}
		f := NewFetcher(&tu.MockSearch{}, nil, cfg, nil)
		if f.BaseDelay != ms(100) || f.JitterMax != ms(50) || f.MaxAttempts != 3 {
			t.Errorf("unexpected config: base=%s jitter=%s attempts=%d", f.BaseDelay, f.JitterMax, f.MaxAttempts)
		}
	})
}

func TestFetcherFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the selected match on first success", func(t *testing.T) {
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			return []models.Candidate{{Name: "Other Song", BPM: 90}, {Name: "Midnight City", BPM: 105}}, nil
		}}
		sleeper := &tu.RecordingSleeper{}
		f := newTestFetcher(search, sleeper)
		f.Jitter = func(max time.Duration) time.Duration { return ms(120) }

		got := f.Fetch(ctx, "M83", "Midnight City")
		if !got.Matched() || got.Candidate.BPM != 105 {
			t.Fatalf("expected Midnight City match, got %+v", got)
		}
		if calls := search.Calls(); !slices.Equal(calls, []string{"M83 Midnight City"}) {
			t.Errorf("unexpected queries: %v", calls)
		}
		if waits := sleeper.Waits(); !slices.Equal(waits, []time.Duration{ms(620)}) {
			t.Errorf("expected base delay plus jitter, got %v", waits)
		}
	})

	t.Run("no match on success is terminal", func(t *testing.T) {
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			return []models.Candidate{{Name: "Completely Different"}}, nil
		}}
		f := newTestFetcher(search, &tu.RecordingSleeper{})

		if got := f.Fetch(ctx, "M83", "Midnight City"); got.Matched() {
			t.Errorf("expected no match, got %+v", got)
		}
		if n := len(search.Calls()); n != 1 {
			t.Errorf("expected 1 query, got %d", n)
		}
	})

	t.Run("gives up after five failed attempts", func(t *testing.T) {
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			return nil, shared.ErrAPIRequest
		}}
		sleeper := &tu.RecordingSleeper{}
		f := newTestFetcher(search, sleeper)

		got := f.Fetch(ctx, "M83", "Midnight City")
		if got.Matched() {
			t.Fatalf("expected no match, got %+v", got)
		}
		if n := len(search.Calls()); n != 5 {
			t.Errorf("expected 5 queries, got %d", n)
		}

		want := []time.Duration{
			ms(500), ms(1500),
			ms(500), ms(2250),
			ms(500), ms(3375),
			ms(500), ms(5000),
			ms(500),
		}
		if waits := sleeper.Waits(); !slices.Equal(waits, want) {
			t.Errorf("expected waits %v, got %v", want, waits)
		}
	})

	t.Run("honors Retry-After plus attempt seconds", func(t *testing.T) {
		calls := 0
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			calls++
			if calls == 1 {
				return nil, &shared.RateLimitError{StatusCode: 429, RetryAfter: 2 * time.Second}
			}
			return []models.Candidate{{Name: "Midnight City"}}, nil
		}}
		sleeper := &tu.RecordingSleeper{}
		f := newTestFetcher(search, sleeper)

		if got := f.Fetch(ctx, "M83", "Midnight City"); !got.Matched() {
			t.Fatalf("expected match after retry, got %+v", got)
		}
		want := []time.Duration{ms(500), ms(3000), ms(500)}
		if waits := sleeper.Waits(); !slices.Equal(waits, want) {
			t.Errorf("expected waits %v, got %v", want, waits)
		}
	})

	t.Run("rate limits count toward the attempt cap", func(t *testing.T) {
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			return nil, &shared.RateLimitError{StatusCode: 429}
		}}
		sleeper := &tu.RecordingSleeper{}
		f := newTestFetcher(search, sleeper)

		if got := f.Fetch(ctx, "A", "B"); got.Matched() {
			t.Fatalf("expected no match, got %+v", got)
		}
		if n := len(search.Calls()); n != 5 {
			t.Errorf("expected 5 queries, got %d", n)
		}
		waits := sleeper.Waits()
		if waits[1] != time.Second || waits[3] != 2*time.Second {
			t.Errorf("expected attempt-scaled waits, got %v", waits)
		}
	})

	t.Run("reports attempts", func(t *testing.T) {
		search := &tu.MockSearch{SearchFunc: func(ctx context.Context, q string) ([]models.Candidate, error) {
			return nil, errors.New("boom")
		}}
		f := newTestFetcher(search, &tu.RecordingSleeper{})
		f.MaxAttempts = 3

		var seen []models.Attempt
		f.OnAttempt = func(a models.Attempt) { seen = append(seen, a) }
		f.Fetch(ctx, "Daft Punk", "One More Time")

		want := []models.Attempt{
			{Number: 1, Query: "Daft Punk One More Time"},
			{Number: 2, Query: "Daft Punk One More Time"},
			{Number: 3, Query: "Daft Punk One More Time"},
		}
		if !slices.Equal(seen, want) {
			t.Errorf("expected attempts %v, got %v", want, seen)
		}
	})

	t.Run("cancelled context yields no match without searching", func(t *testing.T) {
		search := &tu.MockSearch{}
		f := newTestFetcher(search, &tu.RecordingSleeper{})

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if got := f.Fetch(cctx, "A", "B"); got.Matched() {
			t.Errorf("expected no match, got %+v", got)
		}
		if n := len(search.Calls()); n != 0 {
			t.Errorf("expected no queries, got %d", n)
		}
	})
}

func TestSleepContext(t *testing.T) {
	t.Run("returns after the duration", func(t *testing.T) {
		if err := SleepContext(context.Background(), time.Millisecond); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns early on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > time.Second {
			t.Error("expected SleepContext to return immediately")
		}
	})
}

func TestRandomJitter(t *testing.T) {
	if got := RandomJitter(0); got != 0 {
		t.Errorf("expected 0 for zero max, got %s", got)
	}
	for range 100 {
		if got := RandomJitter(ms(500)); got < 0 || got >= ms(500) {
			t.Fatalf("jitter %s outside [0, 500ms)", got)
		}
	}
}
