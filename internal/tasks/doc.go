// Package tasks runs the enrichment pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Run] : Full link → report rows run
//     - Fetches the referenced tracks from the [services.TrackSource]
//     - Fails with [shared.ErrNoTracks] when the source is empty
//     - Returns an [EnrichResult] with match counts and elapsed time
//
//  2. [Engine.ProcessAll] : Batch orchestration
//     - Splits tracks into groups of BatchSize (default 5)
//     - Fetches each group concurrently and waits for all of it
//     - Pauses BatchDelay (default 5s) between groups, never after the last
//     - Keeps input order regardless of completion order
//
// # Fetching
//
// [Fetcher.Fetch] is a bounded retry loop around [services.SearchService.Search].
// Every attempt is preceded by BaseDelay plus jitter. A [shared.RateLimitError]
// waits RetryAfter plus one second per attempt; other errors back off
// 1.5^n seconds capped at 5s. After MaxAttempts the track is reported as
// unmatched. Sleep and jitter are injectable for tests.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default so a slow consumer never stalls a batch.
package tasks
