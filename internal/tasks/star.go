package tasks

import (
	"strings"

	"github.com/desertthunder/tempo/internal/models"
)

// ToggleStars flips the starred flag on every record the predicate selects.
// The input slice is untouched; a modified copy and the number of toggled
// records are returned.
func ToggleStars(records []models.AlbumRecord, match func(models.AlbumRecord) bool) ([]models.AlbumRecord, int) {
	out := make([]models.AlbumRecord, len(records))
	copy(out, records)

	toggled := 0
	for i := range out {
		if match(out[i]) {
			out[i].Starred = !out[i].Starred
			toggled++
		}
	}
	return out, toggled
}

// ByAlbumName matches records whose album name equals name, ignoring case.
func ByAlbumName(name string) func(models.AlbumRecord) bool {
	return func(r models.AlbumRecord) bool {
		return strings.EqualFold(r.AlbumName, name)
	}
}

// ByAlbumSubstring matches records whose album or artist name contains the
// query, ignoring case.
func ByAlbumSubstring(query string) func(models.AlbumRecord) bool {
	q := strings.ToLower(query)
	return func(r models.AlbumRecord) bool {
		return strings.Contains(strings.ToLower(r.AlbumName), q) ||
			strings.Contains(strings.ToLower(r.ArtistName), q)
	}
}

// Starred returns only the records currently starred.
func Starred(records []models.AlbumRecord) []models.AlbumRecord {
	var out []models.AlbumRecord
	for _, r := range records {
		if r.Starred {
			out = append(out, r)
		}
	}
	return out
}
