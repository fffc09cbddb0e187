package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	SearchTracks
	Batch
	BatchPause
	TrackDone
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SearchTracks:
		return "search_tracks"
	case Batch:
		return "batch"
	case BatchPause:
		return "batch_pause"
	case TrackDone:
		return "track_done"
	default:
		return ""
	}
}

func fetchSourceUpdate(ref models.Reference) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s %s from Spotify...", ref.Type, ref.ID),
		Data:    ref,
	}
}

func searchTracksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d tracks on Tunebat...", total),
	}
}

func batchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Batch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Batch %d/%d (%d tracks)", step, total, size),
		Data:    size,
	}
}

func batchPauseUpdate(step, total int, d time.Duration) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchPause,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Waiting %s before next batch...", d),
		Data:    d,
	}
}

func trackDoneUpdate(step, total int, row models.ResultRow) ProgressUpdate {
	mark := "✓"
	if !row.Available() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   TrackDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %s - %s", mark, row.Artist, row.Song),
		Data:    row,
	}
}
