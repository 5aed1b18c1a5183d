// Package repositories persists artist lookups in SQLite.
//
// [ArtistRepository] implements models.Repository for [models.ArtistLookup]
// with soft deletes and per-table sequences. [CachedArtistLookup] layers
// the repository in front of a services.ArtistLookup source so album
// resolutions survive across runs.
package repositories
