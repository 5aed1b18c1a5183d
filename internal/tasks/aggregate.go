package tasks

import (
	"math"
	"sort"

	"github.com/desertthunder/tempo/internal/models"
)

// AggregateOptions controls how play events collapse into album sessions.
type AggregateOptions struct {
	// ListenThreshold is the played fraction of a track that counts as a
	// listen.
	ListenThreshold float64

	// CompletionThreshold drops albums whose track completion percentage
	// falls below it. Zero keeps everything.
	CompletionThreshold float64

	// WatchOnly restricts aggregation to Apple Watch plays.
	WatchOnly bool

	// Artists maps album names to artists, from Container Details plus any
	// cached API lookups.
	Artists map[string]string

	// Genres maps album names to genre strings.
	Genres map[string]string
}

// albumSession accumulates per-album state while events stream through.
type albumSession struct {
	tracks     map[string]struct{}
	listened   map[string]struct{}
	trackMedia map[string]float64
	playedMs   float64
	playCount  int
	first      models.PlayEvent
	last       models.PlayEvent
}

// AggregateSessions groups play events into per-album listen sessions.
//
// Two completion measures are derived. The track-based percentage counts
// how many of the album's observed tracks were listened through, while the
// duration ratio divides total played time by the album's nominal duration
// (the sum of each unique track's media duration). An album with no known
// media durations gets a ratio of zero, never a division error.
func AggregateSessions(events []models.PlayEvent, opts AggregateOptions) []models.AlbumRecord {
	sessions := make(map[string]*albumSession)

	for _, event := range events {
		if opts.WatchOnly && !event.OnWatch() {
			continue
		}

		s := sessions[event.AlbumName]
		if s == nil {
			s = &albumSession{
				tracks:     make(map[string]struct{}),
				listened:   make(map[string]struct{}),
				trackMedia: make(map[string]float64),
				first:      event,
				last:       event,
			}
			sessions[event.AlbumName] = s
		}

		s.tracks[event.SongName] = struct{}{}
		if event.Listened(opts.ListenThreshold) {
			s.listened[event.SongName] = struct{}{}
		}
		if event.MediaDurationMs > s.trackMedia[event.SongName] {
			s.trackMedia[event.SongName] = event.MediaDurationMs
		}
		s.playedMs += event.PlayDurationMs
		s.playCount++

		if !event.EventTime.IsZero() {
			if s.first.EventTime.IsZero() || event.EventTime.Before(s.first.EventTime) {
				s.first = event
			}
			if s.last.EventTime.IsZero() || event.EventTime.After(s.last.EventTime) {
				s.last = event
			}
		}
	}

	var records []models.AlbumRecord
	for album, s := range sessions {
		total := len(s.tracks)
		listened := len(s.listened)

		var percentage float64
		if total > 0 {
			percentage = math.Round(float64(listened)/float64(total)*1000) / 10
		}
		if opts.CompletionThreshold > 0 && percentage < opts.CompletionThreshold {
			continue
		}

		var nominalMs float64
		for _, media := range s.trackMedia {
			nominalMs += media
		}
		var ratio float64
		if nominalMs > 0 {
			ratio = s.playedMs / nominalMs
			if ratio > 1 {
				ratio = 1
			}
		}

		records = append(records, models.AlbumRecord{
			AlbumName:            album,
			ArtistName:           opts.Artists[album],
			Genre:                opts.Genres[album],
			TotalTracks:          total,
			ListenedTracks:       listened,
			CompletionRatio:      ratio,
			CompletionPercentage: percentage,
			PlayCount:            s.playCount,
			FirstListen:          s.first.EventTime,
			LastListen:           s.last.EventTime,
		})
	}

	// Most-played albums first, album name as tiebreak for stable output
	sort.Slice(records, func(i, j int) bool {
		if records[i].PlayCount != records[j].PlayCount {
			return records[i].PlayCount > records[j].PlayCount
		}
		return records[i].AlbumName < records[j].AlbumName
	})

	return records
}
