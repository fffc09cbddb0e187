// Package services implements the HTTP collaborators of the enrichment pipeline.
//
// # Track Source
//
// [SpotifyService] implements [TrackSource]. It authenticates with the
// client-credentials grant, so only public playlists and tracks are reachable.
// Playlist items are fetched 100 at a time following the "next" cursor, and
// page requests are paced by a [rate.Limiter]. Removed and local items are skipped.
//
// # Search Service
//
// [TunebatService] implements [SearchService]. It never retries on its own; the
// retry policy lives in the tasks package. A 429 response carrying a usable
// Retry-After header is returned as [shared.RateLimitError], everything else
// wraps [shared.ErrAPIRequest].
//
// # Links
//
// [ParseLink] accepts open.spotify.com share links (with or without an intl-xx
// path segment and query string) and spotify:{type}:{id} URIs.
//
// [rate.Limiter]: https://pkg.go.dev/golang.org/x/time/rate#Limiter
package services
