package matching

import (
	"strings"

	"github.com/desertthunder/setlist/internal/models"
)

// DefaultThreshold is the confidence floor a candidate must reach to be accepted.
const DefaultThreshold = 0.8

// Selector picks the best candidate for a title.
type Selector struct {
	Scorer    Scorer
	Threshold float64
}

// NewSelector returns a Selector with the given scorer and floor.
//
// A nil scorer selects [Score] and a non-positive threshold selects [DefaultThreshold].
func NewSelector(scorer Scorer, threshold float64) *Selector {
	if scorer == nil {
		scorer = Score
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Selector{Scorer: scorer, Threshold: threshold}
}

// Select returns the highest scoring unique candidate when it reaches the threshold.
func (s *Selector) Select(candidates []models.Candidate, title string) models.MatchResult {
	scorer := s.Scorer
	if scorer == nil {
		scorer = Score
	}

	var best *models.Candidate
	bestScore := 0.0
	for _, c := range Dedupe(candidates) {
		score := scorer(c.Name, title)
		if score > bestScore {
			c := c
			best, bestScore = &c, score
		}
	}

	if best == nil || bestScore < s.Threshold {
		return models.NoMatch(bestScore)
	}
	return models.MatchResult{Candidate: best, Score: bestScore}
}

// Dedupe drops candidates whose name case-insensitively repeats an earlier one.
func Dedupe(candidates []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
