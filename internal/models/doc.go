// Package models defines domain entities and persistence interfaces for the setlist enrichment service.
//
// The package contains two categories of types:
//
// 1. Pipeline values: short-lived structs passed between the enrichment stages
//   - [Reference] : Parsed Spotify link (playlist or track ID)
//   - [Track] : Song title and artist from the source catalog
//   - [Candidate] : A single Tunebat search hit with tempo, key, duration and energy
//   - [MatchResult] : Best candidate for a track, or no match
//   - [ResultRow] : One report line, with [Unavailable] in place of missing data
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Report] : A finished enrichment run and its rows
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
