package models

import (
	"math"
	"time"
)

// ReportConfig records the thresholds a report was generated with, so the
// viewer can display them and reruns can detect drift.
type ReportConfig struct {
	CompletionThreshold float64 `json:"completion_threshold"`
	ListenThreshold     float64 `json:"listen_threshold"`
	ToleranceMinutes    int     `json:"tolerance_minutes"`
}

// Statistics summarizes a report's album records.
type Statistics struct {
	TotalAlbums       int     `json:"total_albums"`
	StarredAlbums     int     `json:"starred_albums"`
	MatchedRuns       int     `json:"matched_runs"`
	TotalPlays        int     `json:"total_plays"`
	AverageCompletion float64 `json:"average_completion"`
}

// Report is the document written to data.json and read by the static
// viewer. Field names are part of the viewer contract.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Config      ReportConfig  `json:"config"`
	Statistics  Statistics    `json:"statistics"`
	WatchAlbums []AlbumRecord `json:"watch_albums"`
}

// RecomputeStatistics rebuilds the summary block from the current records.
// Matched runs counts distinct activities, not matched records, since one
// run can span several albums.
func (r *Report) RecomputeStatistics() {
	stats := Statistics{TotalAlbums: len(r.WatchAlbums)}
	activities := make(map[int64]struct{})
	var completionSum float64

	for _, rec := range r.WatchAlbums {
		if rec.Starred {
			stats.StarredAlbums++
		}
		if rec.HasRun() {
			activities[rec.StravaFields.ActivityID] = struct{}{}
		}
		stats.TotalPlays += rec.PlayCount
		completionSum += rec.CompletionPercentage
	}

	stats.MatchedRuns = len(activities)
	if len(r.WatchAlbums) > 0 {
		avg := completionSum / float64(len(r.WatchAlbums))
		stats.AverageCompletion = math.Round(avg*10) / 10
	}
	r.Statistics = stats
}

// DateRange returns the earliest first listen and latest last listen across
// the report's records. ok is false when the report holds no records.
func (r *Report) DateRange() (start, end time.Time, ok bool) {
	for _, rec := range r.WatchAlbums {
		if !ok {
			start, end, ok = rec.FirstListen, rec.LastListen, true
			continue
		}
		if rec.FirstListen.Before(start) {
			start = rec.FirstListen
		}
		if rec.LastListen.After(end) {
			end = rec.LastListen
		}
	}
	return start, end, ok
}
