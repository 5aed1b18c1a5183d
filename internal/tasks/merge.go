package tasks

import (
	"github.com/desertthunder/tempo/internal/models"
)

// MergeRecords reconciles a freshly computed set of album records with the
// previously saved set. The computed set defines which albums exist; keys
// only present in existing are dropped, so stale albums disappear on
// refresh.
//
// Protected fields survive from existing where the computed pass has
// nothing fresher:
//
//   - starred merges as a logical OR, so a star set on either side stays
//   - artist and genre from the computed pass win only when non-empty
//   - strava fields from the computed pass win only when present
//
// Duplicate keys within computed resolve last-write-wins by input order.
// The operation is pure and idempotent: merging the same computed set
// twice yields the same result.
func MergeRecords(existing, computed []models.AlbumRecord) []models.AlbumRecord {
	prior := make(map[string]models.AlbumRecord, len(existing))
	for _, rec := range existing {
		prior[rec.Key()] = rec
	}

	merged := make([]models.AlbumRecord, 0, len(computed))
	position := make(map[string]int, len(computed))

	for _, rec := range computed {
		key := rec.Key()

		if old, ok := prior[key]; ok {
			rec = reconcile(old, rec)
		}

		if idx, seen := position[key]; seen {
			merged[idx] = rec
			continue
		}
		position[key] = len(merged)
		merged = append(merged, rec)
	}

	return merged
}

// reconcile folds one existing record into its computed replacement.
func reconcile(old, fresh models.AlbumRecord) models.AlbumRecord {
	fresh.Starred = fresh.Starred || old.Starred

	if fresh.ArtistName == "" {
		fresh.ArtistName = old.ArtistName
	}
	if fresh.Genre == "" {
		fresh.Genre = old.Genre
	}
	if fresh.StravaFields == nil {
		fresh.StravaFields = old.StravaFields
	}

	return fresh
}
