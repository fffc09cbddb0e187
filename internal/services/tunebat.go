// Tunebat search API implementation of [SearchService]
//
// Tunebat abbreviates its field names; see [tunebatItem].
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const defaultTunebatBaseURL string = "https://api.tunebat.com"

// tunebatNumber decodes a numeric field that may be absent or null into NaN.
type tunebatNumber float64

func (n *tunebatNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*n = tunebatNumber(math.NaN())
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = tunebatNumber(math.NaN())
		return nil
	}
	*n = tunebatNumber(v)
	return nil
}

// tunebatItem is a search hit as returned by the API.
//
//	n: name, as: artists, an: album, b: bpm, k: key, c: camelot, d: duration (ms), e: energy
type tunebatItem struct {
	ID       string         `json:"id"`
	Name     string         `json:"n"`
	Artists  []string       `json:"as"`
	Album    string         `json:"an"`
	BPM      *tunebatNumber `json:"b"`
	Key      models.KeyCode `json:"k"`
	Camelot  models.KeyCode `json:"c"`
	Duration *tunebatNumber `json:"d"`
	Energy   *tunebatNumber `json:"e"`
}

type tunebatSearchResponse struct {
	Data struct {
		Items []tunebatItem `json:"items"`
	} `json:"data"`
}

func (i tunebatItem) candidate() models.Candidate {
	key := i.Camelot
	if key == "" {
		key = i.Key
	}
	return models.Candidate{
		ID:         i.ID,
		Name:       i.Name,
		Artists:    i.Artists,
		BPM:        numberOrNaN(i.BPM),
		Key:        key,
		DurationMS: numberOrNaN(i.Duration),
		Energy:     numberOrNaN(i.Energy),
	}
}

func numberOrNaN(n *tunebatNumber) float64 {
	if n == nil {
		return math.NaN()
	}
	return float64(*n)
}

// TunebatService implements [SearchService] against the public Tunebat API.
type TunebatService struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewTunebatService creates a new Tunebat service instance.
func NewTunebatService(baseURL string, timeout time.Duration) *TunebatService {
	if baseURL == "" {
		baseURL = defaultTunebatBaseURL
	}

	client := http.DefaultClient
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}

	return &TunebatService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		now:        time.Now,
	}
}

// Name returns the service name.
func (t *TunebatService) Name() string {
	return "Tunebat"
}

// Search queries GET /api/tracks/search?term={query}.
func (t *TunebatService) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	endpoint := "/api/tracks/search?term=" + url.QueryEscape(query)

	var resp tunebatSearchResponse
	if err := t.doRequest(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		candidates = append(candidates, item.candidate())
	}
	return candidates, nil
}

func (t *TunebatService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if wait, ok := parseRetryAfter(resp.Header.Get("Retry-After"), t.now()); ok {
			return &shared.RateLimitError{StatusCode: resp.StatusCode, RetryAfter: wait}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: tunebat status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given either in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := when.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
