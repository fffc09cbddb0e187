package models

import (
	"fmt"
	"time"
)

// Report is a persisted enrichment run.
type Report struct {
	id           string
	sequence     int
	link         string
	sourceType   RefType
	sourceID     string
	trackCount   int
	matchedCount int
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
	rows         []ResultRow
}

// NewReport creates a Report for the given source reference and rows.
//
// Counts are derived from rows; the ID is assigned by the repository on create.
func NewReport(sequence int, link string, ref Reference, rows []ResultRow) *Report {
	now := time.Now()
	r := &Report{
		sequence:   sequence,
		link:       link,
		sourceType: ref.Type,
		sourceID:   ref.ID,
		createdAt:  now,
		updatedAt:  now,
	}
	r.SetRows(rows)
	return r
}

// RestoreReport rebuilds a Report from stored column values.
func RestoreReport(
	id string, sequence int, link string, sourceType RefType, sourceID string,
	trackCount, matchedCount int, createdAt, updatedAt time.Time, deletedAt *time.Time,
) *Report {
	return &Report{
		id:           id,
		sequence:     sequence,
		link:         link,
		sourceType:   sourceType,
		sourceID:     sourceID,
		trackCount:   trackCount,
		matchedCount: matchedCount,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		deletedAt:    deletedAt,
	}
}

func (r *Report) ID() string               { return r.id }
func (r *Report) Sequence() int            { return r.sequence }
func (r *Report) Link() string             { return r.link }
func (r *Report) SourceType() RefType      { return r.sourceType }
func (r *Report) SourceID() string         { return r.sourceID }
func (r *Report) TrackCount() int          { return r.trackCount }
func (r *Report) MatchedCount() int        { return r.matchedCount }
func (r *Report) CreatedAt() time.Time     { return r.createdAt }
func (r *Report) UpdatedAt() time.Time     { return r.updatedAt }
func (r *Report) DeletedAt() *time.Time    { return r.deletedAt }
func (r *Report) Rows() []ResultRow        { return r.rows }
func (r *Report) SetID(id string)          { r.id = id }
func (r *Report) SetSequence(seq int)      { r.sequence = seq }
func (r *Report) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// SetRows replaces the report rows and recomputes the counts.
func (r *Report) SetRows(rows []ResultRow) {
	r.rows = rows
	r.trackCount = len(rows)
	r.matchedCount = 0
	for _, row := range rows {
		if row.Available() {
			r.matchedCount++
		}
	}
}

// MatchPercentage returns the share of rows with Tunebat data.
func (r *Report) MatchPercentage() float64 {
	if r.trackCount == 0 {
		return 0
	}
	return float64(r.matchedCount) / float64(r.trackCount) * 100
}

// Validate checks required fields.
func (r *Report) Validate() error {
	if r.id == "" {
		return fmt.Errorf("report ID is required")
	}
	if r.sourceType != RefPlaylist && r.sourceType != RefTrack {
		return fmt.Errorf("invalid source type %q", r.sourceType)
	}
	if r.sourceID == "" {
		return fmt.Errorf("source ID is required")
	}
	if r.matchedCount > r.trackCount {
		return fmt.Errorf("matched count %d exceeds track count %d", r.matchedCount, r.trackCount)
	}
	return nil
}
