package matching

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tc := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "Blinding Lights", b: "Blinding Lights", want: 1},
		{name: "case insensitive", a: "BLINDING LIGHTS", b: "blinding lights", want: 1},
		{name: "whitespace ignored", a: "Blinding  Lights", b: "BlindingLights", want: 1},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "one shared bigram", a: "night", b: "nacht", want: 0.25},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one empty", a: "Song", b: "", want: 0},
		{name: "single character", a: "a", b: "ab", want: 0},
		{name: "repeated bigrams count once per occurrence", a: "Bye Bye", b: "Bye Bye Bye", want: 10.0 / 13.0},
		{name: "repeated letters", a: "aaaa", b: "aa", want: 0.5},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScorerProperties(t *testing.T) {
	pairs := [][2]string{
		{"Levitating", "Levitating (feat. DaBaby)"},
		{"Bad Guy", "bad guy - remix"},
		{"One More Time", "Harder Better Faster Stronger"},
		{"Strobe", "Strobe - Radio Edit"},
		{"", "Anything"},
	}

	for _, algorithm := range []string{AlgorithmDice, AlgorithmJaroWinkler, AlgorithmLevenshtein} {
		t.Run(algorithm, func(t *testing.T) {
			scorer, err := NewScorer(algorithm)
			if err != nil {
				t.Fatalf("NewScorer(%q) failed: %v", algorithm, err)
			}

			for _, p := range pairs {
				ab, ba := scorer(p[0], p[1]), scorer(p[1], p[0])
				if math.Abs(ab-ba) > 1e-6 {
					t.Errorf("%s not symmetric for %q/%q: %v vs %v", algorithm, p[0], p[1], ab, ba)
				}
				if ab < 0 || ab > 1 {
					t.Errorf("%s out of range for %q/%q: %v", algorithm, p[0], p[1], ab)
				}
				if again := scorer(p[0], p[1]); again != ab {
					t.Errorf("%s not deterministic for %q/%q", algorithm, p[0], p[1])
				}
			}

			if got := scorer("Midnight City", "midnight city"); math.Abs(got-1) > 1e-6 {
				t.Errorf("%s expected 1 for case-only difference, got %v", algorithm, got)
			}
		})
	}

	t.Run("unknown algorithm", func(t *testing.T) {
		if _, err := NewScorer("soundex"); err == nil {
			t.Error("expected error for unknown algorithm")
		}
	})

	t.Run("empty name selects dice", func(t *testing.T) {
		scorer, err := NewScorer("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := scorer("night", "nacht"); math.Abs(got-0.25) > 1e-6 {
			t.Errorf("expected dice score 0.25, got %v", got)
		}
	})
}
