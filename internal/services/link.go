package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

var (
	linkPathPattern = regexp.MustCompile(`(?:^|/)(playlist|track)/([A-Za-z0-9]+)`)
	linkURIPattern  = regexp.MustCompile(`^spotify:(playlist|track):([A-Za-z0-9]+)$`)
)

// ParseLink extracts the object type and ID from a Spotify share link or URI.
//
// Accepted forms:
//   - https://open.spotify.com/playlist/{id}?si=...
//   - https://open.spotify.com/intl-de/track/{id}
//   - spotify:playlist:{id}
func ParseLink(link string) (models.Reference, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return models.Reference{}, fmt.Errorf("%w: empty link", shared.ErrInvalidLink)
	}

	if m := linkURIPattern.FindStringSubmatch(link); m != nil {
		return models.Reference{Type: models.RefType(m[1]), ID: m[2]}, nil
	}

	path := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		path = u.Path
	}

	if m := linkPathPattern.FindStringSubmatch(path); m != nil {
		return models.Reference{Type: models.RefType(m[1]), ID: m[2]}, nil
	}

	switch {
	case strings.Contains(link, "playlist/"):
		return models.Reference{}, fmt.Errorf("%w: invalid playlist link format", shared.ErrInvalidLink)
	case strings.Contains(link, "track/"):
		return models.Reference{}, fmt.Errorf("%w: invalid track link format", shared.ErrInvalidLink)
	default:
		return models.Reference{}, fmt.Errorf("%w: unsupported link %q, expected a Spotify playlist or track link", shared.ErrInvalidLink, link)
	}
}
