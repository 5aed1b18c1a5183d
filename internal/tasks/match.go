package tasks

import (
	"sort"
	"time"

	"github.com/desertthunder/tempo/internal/models"
)

// MatchResult summarizes a matching pass.
type MatchResult struct {
	Matched   int
	Unmatched int

	// MultiAlbumRuns groups album names by activity for runs long enough
	// to span more than one album.
	MultiAlbumRuns map[int64][]string
}

// MatchRuns pairs each album session with the activity whose start time
// falls closest to the session's first listen, within the tolerance window
// on either side. An exact distance tie goes to the lower activity ID. One
// activity may claim several sessions; sessions with no activity in range
// keep a nil StravaFields.
//
// The input slice is not modified; matched copies are returned.
func MatchRuns(records []models.AlbumRecord, activities []models.Activity, tolerance time.Duration) ([]models.AlbumRecord, MatchResult) {
	result := MatchResult{MultiAlbumRuns: make(map[int64][]string)}

	sorted := make([]models.Activity, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].StartDate.Equal(sorted[j].StartDate) {
			return sorted[i].StartDate.Before(sorted[j].StartDate)
		}
		return sorted[i].ActivityID < sorted[j].ActivityID
	})

	matched := make([]models.AlbumRecord, len(records))
	byActivity := make(map[int64][]string)

	for i, record := range records {
		matched[i] = record

		if record.FirstListen.IsZero() {
			result.Unmatched++
			continue
		}

		best, ok := closestActivity(sorted, record.FirstListen, tolerance)
		if !ok {
			result.Unmatched++
			continue
		}

		matched[i].StravaFields = models.NewStravaFields(best)
		result.Matched++
		byActivity[best.ActivityID] = append(byActivity[best.ActivityID], record.AlbumName)
	}

	for id, albums := range byActivity {
		if len(albums) > 1 {
			result.MultiAlbumRuns[id] = albums
		}
	}

	return matched, result
}

// closestActivity scans for the activity nearest to t within tolerance.
// Activities must be sorted by start date so equal distances resolve to the
// lower ID deterministically.
func closestActivity(activities []models.Activity, t time.Time, tolerance time.Duration) (models.Activity, bool) {
	var best models.Activity
	bestDelta := tolerance + 1
	found := false

	for _, a := range activities {
		delta := a.StartDate.Sub(t)
		if delta < 0 {
			delta = -delta
		}
		if delta > tolerance {
			continue
		}
		if !found || delta < bestDelta || (delta == bestDelta && a.ActivityID < best.ActivityID) {
			best = a
			bestDelta = delta
			found = true
		}
	}

	return best, found
}
