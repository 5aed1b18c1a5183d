// Package models defines domain entities for the tempo listening report pipeline.
//
// The package contains two categories of types:
//
// 1. Report records and their inputs:
//   - [PlayEvent] : A raw Apple Music Play Activity row
//   - [Activity] : A normalized Strava activity
//   - [AlbumRecord] : One album's aggregated listen session, with optional run metrics
//   - [Report] : The data.json document the static viewer consumes
//
// 2. Persistent entities: Database-backed models with full lifecycle management
//   - [ArtistLookup] : Cached album-to-artist resolutions from the iTunes Search API
//
// Persistent entities implement the Model interface providing ID generation,
// timestamps, validation, and soft delete support. The Repository[T] interface
// defines standard CRUD operations for database access.
package models
