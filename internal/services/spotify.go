// Spotify Web API implementation of [TrackSource]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// spotifyPageSize is the maximum page size of the playlist items endpoint.
	spotifyPageSize = 100
)

var errNotFound = errors.New("resource not found")

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil for items that were removed from the catalog.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of playlist items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService implements [TrackSource] using the client-credentials grant.
type SpotifyService struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithSpotifyBaseURL points the service at a different API root.
func WithSpotifyBaseURL(baseURL string) SpotifyOption {
	return func(s *SpotifyService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithSpotifyTokenURL overrides the token endpoint.
func WithSpotifyTokenURL(tokenURL string) SpotifyOption {
	return func(s *SpotifyService) {
		s.config.TokenURL = tokenURL
	}
}

// WithSpotifyRateLimit paces page requests to rps requests per second.
func WithSpotifyRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	s := &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyTokenURL,
		},
		baseURL: spotifyBaseURL,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate prepares an HTTP client that obtains and refreshes app tokens on demand.
//
// The first token is requested eagerly so bad credentials fail before any catalog call.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	if _, err := s.config.Token(ctx); err != nil {
		return fmt.Errorf("%w: spotify client credentials: %v", shared.ErrAuthFailed, err)
	}
	s.httpClient = s.config.Client(ctx)
	return nil
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrServiceUnavailable)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify rejected the access token", shared.ErrAuthFailed)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	if err := s.doRequest(ctx, "/tracks/"+url.PathEscape(trackID), &track); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
		}
		return nil, err
	}
	return &track, nil
}

// PlaylistTracks retrieves every item of a playlist, following pagination.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]SpotifyPlaylistTrack, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=0", url.PathEscape(playlistID), spotifyPageSize)

	var items []SpotifyPlaylistTrack
	for endpoint != "" {
		var page SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
			}
			return nil, err
		}

		items = append(items, page.Items...)

		endpoint = ""
		if page.Next != nil {
			endpoint = *page.Next
		}
	}
	return items, nil
}

// Tracks implements [TrackSource].
func (s *SpotifyService) Tracks(ctx context.Context, ref models.Reference) ([]models.Track, error) {
	switch ref.Type {
	case models.RefTrack:
		st, err := s.Track(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return []models.Track{toTrack(st)}, nil
	case models.RefPlaylist:
		items, err := s.PlaylistTracks(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		tracks := make([]models.Track, 0, len(items))
		for _, item := range items {
			if item.IsLocal || item.Track == nil || item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, toTrack(item.Track))
		}
		return tracks, nil
	default:
		return nil, fmt.Errorf("%w: unsupported reference type %q", shared.ErrInvalidArgument, ref.Type)
	}
}

func toTrack(st *SpotifyTrack) models.Track {
	track := models.Track{
		ID:         st.ID,
		Title:      st.Name,
		Album:      st.Album.Name,
		DurationMS: st.DurationMS,
	}
	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	return track
}
