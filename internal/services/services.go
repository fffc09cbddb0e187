// package services defines the collaborators of the enrichment pipeline that talk to HTTP APIs
//
// Spotify (track source), Tunebat (metadata search)
package services

import (
	"context"

	"github.com/desertthunder/setlist/internal/models"
)

// TrackSource supplies the tracks referenced by a parsed Spotify link.
type TrackSource interface {
	// Tracks returns the tracks for ref in catalog order. The list may be empty.
	Tracks(ctx context.Context, ref models.Reference) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// SearchService performs free-text lookups against a metadata catalog.
type SearchService interface {
	// Search returns the raw hits for query.
	//
	// Throttling signalled by the server is reported as *shared.RateLimitError;
	// any other error is generic.
	Search(ctx context.Context, query string) ([]models.Candidate, error)

	// Name returns the name of the service (e.g., "Tunebat")
	Name() string
}
