package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want models.Reference
	}{
		{
			name: "playlist share link",
			link: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			want: models.Reference{Type: models.RefPlaylist, ID: "37i9dQZF1DXcBWIGoYBM5M"},
		},
		{
			name: "track share link",
			link: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			want: models.Reference{Type: models.RefTrack, ID: "4uLU6hMCjMI75M1A2tKUQC"},
		},
		{
			name: "localized path",
			link: "https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC?si=x",
			want: models.Reference{Type: models.RefTrack, ID: "4uLU6hMCjMI75M1A2tKUQC"},
		},
		{
			name: "uri",
			link: "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			want: models.Reference{Type: models.RefPlaylist, ID: "37i9dQZF1DXcBWIGoYBM5M"},
		},
		{
			name: "surrounding whitespace",
			link: "  https://open.spotify.com/playlist/abc  ",
			want: models.Reference{Type: models.RefPlaylist, ID: "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLink(tt.link)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}

	t.Run("rejects invalid links", func(t *testing.T) {
		for _, link := range []string{
			"",
			"https://example.com/watch?v=abc",
			"https://open.spotify.com/album/1DFixLWuPkv3KT3TnV35m3",
			"https://open.spotify.com/playlist/",
			"spotify:artist:123",
		} {
			if _, err := ParseLink(link); !errors.Is(err, shared.ErrInvalidLink) {
				t.Errorf("ParseLink(%q): expected ErrInvalidLink, got %v", link, err)
			}
		}
	})
}
