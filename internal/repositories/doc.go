// Package repositories implements SQLite persistence for enrichment history.
//
// [ReportRepository] stores each run together with its ordered rows. Deletes are
// soft: a deleted_at timestamp hides the report from Get and List while its rows remain.
//
// Reports also carry a sequence number (report #42) drawn by [NextSequence] from
// reports_sequence inside the insert transaction; `setlist history` accepts it wherever an ID is expected.
package repositories
