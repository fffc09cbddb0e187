package shared

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		ms   float64
		want string
	}{
		{name: "two minutes five", ms: 125000, want: "2:05"},
		{name: "zero", ms: 0, want: "0:00"},
		{name: "sub second truncates", ms: 59999, want: "0:59"},
		{name: "over an hour", ms: 3723000, want: "62:03"},
		{name: "fractional ms", ms: 215432.7, want: "3:35"},
		{name: "NaN", ms: math.NaN(), want: models.Unavailable},
		{name: "infinite", ms: math.Inf(1), want: models.Unavailable},
		{name: "negative", ms: -1000, want: models.Unavailable},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "track", "Song A")
		logger.Warn("lookup failed")

		if !strings.Contains(buf.String(), "Song A") {
			t.Errorf("expected child logger field in output, got %q", buf.String())
		}
	})
}

func TestRateLimitError(t *testing.T) {
	err := fmt.Errorf("search: %w", &RateLimitError{StatusCode: 429, RetryAfter: 2 * time.Second})

	if !errors.Is(err, ErrRateLimited) {
		t.Error("expected wrapped RateLimitError to match ErrRateLimited")
	}

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatal("expected errors.As to find RateLimitError")
	}
	if rl.RetryAfter != 2*time.Second {
		t.Errorf("expected retry after 2s, got %s", rl.RetryAfter)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}
