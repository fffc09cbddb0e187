package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/setlist/internal/matching"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// candidateView is the JSON shape of a scored search hit.
//
// Missing numbers are encoded as null.
type candidateView struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Artists    []string       `json:"artists,omitempty"`
	BPM        *float64       `json:"bpm"`
	Key        models.KeyCode `json:"key"`
	DurationMS *float64       `json:"duration_ms"`
	Energy     *float64       `json:"energy"`
	Score      *float64       `json:"score,omitempty"`
	Selected   bool           `json:"selected,omitempty"`
}

func newCandidateView(c models.Candidate) candidateView {
	return candidateView{
		ID:         c.ID,
		Name:       c.Name,
		Artists:    c.Artists,
		BPM:        optional(c.BPM),
		Key:        c.Key,
		DurationMS: optional(c.DurationMS),
		Energy:     optional(c.Energy),
	}
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// TunebatSearch runs a single Tunebat query and prints the hits.
//
// With --title each hit is scored against the title the way enrich would, and the selected hit is marked.
func (r *Runner) TunebatSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	title := cmd.String("title")

	search := r.searchService()
	r.logger.Info("searching", "service", search.Name(), "query", query)

	candidates, err := search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	views := make([]candidateView, len(candidates))
	for i, c := range candidates {
		views[i] = newCandidateView(c)
	}

	if title != "" {
		scorer, err := matching.NewScorer(r.config.Enrich.Algorithm)
		if err != nil {
			return err
		}
		for i := range views {
			score := scorer(views[i].Name, title)
			views[i].Score = &score
		}

		match := matching.NewSelector(scorer, r.config.Enrich.Threshold).Select(candidates, title)
		if match.Matched() {
			for i := range views {
				if strings.EqualFold(views[i].Name, match.Candidate.Name) {
					views[i].Selected = true
					break
				}
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	headers := []string{"", "Name", "Artists", "BPM", "Key", "Duration", "Energy"}
	if title != "" {
		headers = append(headers, "Score")
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		mark := ""
		if v.Selected {
			mark = "✓"
		}
		key := string(v.Key)
		if key == "" {
			key = models.Unavailable
		}
		row := []string{
			mark,
			v.Name,
			strings.Join(v.Artists, ", "),
			models.FormatNumber(valueOrNaN(v.BPM)),
			key,
			shared.FormatDuration(valueOrNaN(v.DurationMS)),
			models.FormatNumber(valueOrNaN(v.Energy)),
		}
		if v.Score != nil {
			row = append(row, fmt.Sprintf("%.3f", *v.Score))
		}
		rows[i] = row
	}

	ui.RenderTable(r.output, headers, rows)
	return r.writePlainln("%d results", len(views))
}
