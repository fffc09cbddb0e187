package matching

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/xrash/smetrics"
)

// Scorer compares two titles and returns a similarity in [0, 1].
type Scorer func(a, b string) float64

const (
	AlgorithmDice        = "dice"
	AlgorithmJaroWinkler = "jaro-winkler"
	AlgorithmLevenshtein = "levenshtein"
)

// NewScorer returns the scorer registered under algorithm. An empty name selects [Score].
func NewScorer(algorithm string) (Scorer, error) {
	switch algorithm {
	case "", AlgorithmDice:
		return Score, nil
	case AlgorithmJaroWinkler:
		return JaroWinkler, nil
	case AlgorithmLevenshtein:
		return Levenshtein, nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", algorithm)
	}
}

// Score returns the bigram Dice coefficient of a and b, ignoring case and whitespace.
//
// Bigrams are counted as a multiset: a bigram repeated in both inputs matches as
// many times as it occurs in the rarer one. Identical inputs score 1; inputs
// shorter than two characters score 0.
func Score(a, b string) float64 {
	a, b = compact(a), compact(b)
	if a == b && a != "" {
		return 1
	}
	na, nb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if na < 2 || nb < 2 {
		return 0
	}

	bigramsA, bigramsB := edlib.Shingle(a, 2), edlib.Shingle(b, 2)
	shared := 0
	for bigram, countA := range bigramsA {
		shared += min(countA, bigramsB[bigram])
	}
	return clamp(2 * float64(shared) / float64(na-1+nb-1))
}

// JaroWinkler returns the Jaro-Winkler similarity of the lowercased inputs.
func JaroWinkler(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	// Fixed argument order keeps the score symmetric.
	if b < a {
		a, b = b, a
	}
	return clamp(smetrics.JaroWinkler(a, b, 0.7, 4))
}

// Levenshtein returns 1 minus the normalized edit distance of the lowercased inputs.
func Levenshtein(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return clamp(float64(sim))
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
