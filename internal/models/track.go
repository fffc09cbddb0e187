package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unavailable marks a report field that could not be filled from Tunebat.
const Unavailable = "N/A"

// RefType is the kind of Spotify object a link points to.
type RefType string

const (
	RefPlaylist RefType = "playlist"
	RefTrack    RefType = "track"
)

// Reference is a parsed Spotify link.
type Reference struct {
	Type RefType `json:"type"`
	ID   string  `json:"id"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

// Track represents a song from the source catalog.
//
// Only Title and Artist take part in enrichment; the remaining fields are informational.
type Track struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

// KeyCode is a musical key as reported by Tunebat (e.g. "8A").
//
// The upstream API has returned both strings and numbers for this field.
type KeyCode string

func (k *KeyCode) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*k = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = KeyCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid key code %s: %w", raw, err)
	}
	*k = KeyCode(n.String())
	return nil
}

// Candidate is one Tunebat search hit.
//
// Numeric fields missing from the response are NaN.
type Candidate struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists,omitempty"`
	BPM        float64  `json:"bpm"`
	Key        KeyCode  `json:"key"`
	DurationMS float64  `json:"duration_ms"`
	Energy     float64  `json:"energy"`
}

// MatchResult is the outcome of selecting a candidate for a track title.
//
// A nil Candidate means no candidate cleared the confidence floor.
type MatchResult struct {
	Candidate *Candidate
	Score     float64
}

// Matched reports whether a candidate was selected.
func (m MatchResult) Matched() bool {
	return m.Candidate != nil
}

// NoMatch builds an unmatched result carrying the best score seen.
func NoMatch(score float64) MatchResult {
	return MatchResult{Score: score}
}

// Attempt is the state of one lookup's retry loop.
type Attempt struct {
	Number int
	Query  string
}

// ResultRow is a single line of the enrichment report.
type ResultRow struct {
	Song     string `json:"song"`
	Artist   string `json:"artist"`
	BPM      string `json:"bpm"`
	Key      string `json:"key"`
	Duration string `json:"duration"`
	Energy   string `json:"energy"`
}

// ReportHeaders is the fixed column set of every report.
var ReportHeaders = []string{"Song", "Artist", "BPM", "Key", "Duration", "Energy"}

// Record returns the row as a slice ordered like [ReportHeaders].
func (r ResultRow) Record() []string {
	return []string{r.Song, r.Artist, r.BPM, r.Key, r.Duration, r.Energy}
}

// Available reports whether the row carries Tunebat data.
func (r ResultRow) Available() bool {
	return r.BPM != Unavailable || r.Key != Unavailable || r.Duration != Unavailable || r.Energy != Unavailable
}

// FormatNumber renders a Tunebat numeric field, or [Unavailable] when it is missing.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
