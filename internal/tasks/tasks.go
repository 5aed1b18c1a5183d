// package tasks implements the listening report pipeline.
//
// The core abstraction is ReportEngine, which orchestrates session
// aggregation, Strava run matching, and artist lookups.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
)

// AnalyzeInput carries everything an analysis pass needs: parsed play
// events, album metadata, and the previously saved report when one exists.
type AnalyzeInput struct {
	Events   []models.PlayEvent
	Options  AggregateOptions
	Existing *models.Report
}

// SyncOptions controls a Strava sync pass.
type SyncOptions struct {
	// Tolerance is the half-width of the matching window.
	Tolerance time.Duration

	// BufferDays widens the fetch range on both sides of the report's
	// listen date range.
	BufferDays int
}

// SyncResult reports what a sync pass did.
type SyncResult struct {
	ActivitiesFetched int
	Runs              int
	Match             MatchResult
}

// LookupResult reports what an artist fetch pass did.
type LookupResult struct {
	Missing  int
	Resolved int
	NotFound int
}

// Engine defines the report pipeline operations.
type Engine interface {
	// Analyze aggregates play events into album sessions and merges them
	// with the existing report.
	Analyze(ctx context.Context, input AnalyzeInput, progress chan<- ProgressUpdate) (*models.Report, error)

	// SyncStrava fetches runs over the report's listen range, matches them
	// to album sessions, and merges the results back in.
	SyncStrava(ctx context.Context, report *models.Report, opts SyncOptions, progress chan<- ProgressUpdate) (*models.Report, *SyncResult, error)

	// FetchArtists resolves artists for records missing one.
	FetchArtists(ctx context.Context, report *models.Report, progress chan<- ProgressUpdate) (*models.Report, *LookupResult, error)
}

// ReportEngine implements Engine. Contains dependencies on the activity
// provider and artist lookup services.
type ReportEngine struct {
	activities services.ActivityProvider
	artists    services.ArtistLookup
}

// NewReportEngine creates a ReportEngine with the provided services.
// Either dependency may be nil when the corresponding operation is unused.
func NewReportEngine(activities services.ActivityProvider, artists services.ArtistLookup) *ReportEngine {
	return &ReportEngine{
		activities: activities,
		artists:    artists,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Analyze aggregates events into sessions and merges with the existing
// report, preserving stars and previously attached run metrics.
func (e *ReportEngine) Analyze(ctx context.Context, input AnalyzeInput, progress chan<- ProgressUpdate) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Events) == 0 {
		return nil, fmt.Errorf("%w: no play events to analyze", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, aggregateUpdate(len(input.Events)))
	computed := AggregateSessions(input.Events, input.Options)

	var existing []models.AlbumRecord
	if input.Existing != nil {
		existing = input.Existing.WatchAlbums
	}

	e.sendProgress(progress, mergeUpdate(len(existing), len(computed)))
	merged := MergeRecords(existing, computed)

	report := &models.Report{
		GeneratedAt: time.Now().UTC(),
		Config: models.ReportConfig{
			CompletionThreshold: input.Options.CompletionThreshold,
			ListenThreshold:     input.Options.ListenThreshold,
		},
		WatchAlbums: merged,
	}
	if input.Existing != nil {
		report.Config.ToleranceMinutes = input.Existing.Config.ToleranceMinutes
	}
	report.RecomputeStatistics()

	return report, nil
}

// SyncStrava fetches runs over the report's date range and attaches metrics
// to matching album sessions.
//
// A partial fetch (provider returned shared.ErrIncompleteFetch) still
// matches and merges what arrived; the error is passed through so the
// caller can warn that coverage is incomplete.
func (e *ReportEngine) SyncStrava(ctx context.Context, report *models.Report, opts SyncOptions, progress chan<- ProgressUpdate) (*models.Report, *SyncResult, error) {
	if e.activities == nil {
		return nil, nil, fmt.Errorf("%w: activity provider not initialized", shared.ErrServiceUnavailable)
	}
	if report == nil || len(report.WatchAlbums) == 0 {
		return nil, nil, fmt.Errorf("%w: report has no album records", shared.ErrInvalidInput)
	}

	start, end, ok := report.DateRange()
	if !ok {
		return nil, nil, fmt.Errorf("%w: report records carry no listen dates", shared.ErrInvalidInput)
	}
	buffer := time.Duration(opts.BufferDays) * 24 * time.Hour
	start = start.Add(-buffer)
	end = end.Add(buffer)

	e.sendProgress(progress, fetchActivitiesUpdate())
	activities, fetchErr := e.activities.ListActivities(ctx, start, end)
	if fetchErr != nil && !errors.Is(fetchErr, shared.ErrIncompleteFetch) {
		return nil, nil, fetchErr
	}

	runs := services.FilterRuns(activities)
	e.sendProgress(progress, fetchedActivitiesUpdate(len(activities), len(runs)))

	e.sendProgress(progress, matchUpdate(len(report.WatchAlbums), len(runs)))
	matched, matchResult := MatchRuns(report.WatchAlbums, runs, opts.Tolerance)

	e.sendProgress(progress, mergeUpdate(len(report.WatchAlbums), len(matched)))
	merged := MergeRecords(report.WatchAlbums, matched)

	out := *report
	out.GeneratedAt = time.Now().UTC()
	out.Config.ToleranceMinutes = int(opts.Tolerance / time.Minute)
	out.WatchAlbums = merged
	out.RecomputeStatistics()

	result := &SyncResult{
		ActivitiesFetched: len(activities),
		Runs:              len(runs),
		Match:             matchResult,
	}

	return &out, result, fetchErr
}

// FetchArtists resolves artists for records that have none. Individual
// not-found lookups are counted and skipped; any other failure stops the
// pass so a flaky network never discards earlier resolutions.
func (e *ReportEngine) FetchArtists(ctx context.Context, report *models.Report, progress chan<- ProgressUpdate) (*models.Report, *LookupResult, error) {
	if e.artists == nil {
		return nil, nil, fmt.Errorf("%w: artist lookup not initialized", shared.ErrServiceUnavailable)
	}
	if report == nil {
		return nil, nil, fmt.Errorf("%w: no report loaded", shared.ErrInvalidInput)
	}

	var missing []int
	for i, rec := range report.WatchAlbums {
		if rec.ArtistName == "" {
			missing = append(missing, i)
		}
	}

	out := *report
	out.WatchAlbums = make([]models.AlbumRecord, len(report.WatchAlbums))
	copy(out.WatchAlbums, report.WatchAlbums)

	result := &LookupResult{Missing: len(missing)}

	for step, idx := range missing {
		album := out.WatchAlbums[idx].AlbumName
		e.sendProgress(progress, lookupUpdate(step+1, len(missing), album))

		artist, err := e.artists.SearchArtist(ctx, album)
		if err != nil {
			if errors.Is(err, shared.ErrArtistNotFound) {
				result.NotFound++
				e.sendProgress(progress, lookupResultUpdate(step+1, len(missing), album, ""))
				continue
			}
			return &out, result, fmt.Errorf("artist lookup for %q: %w", album, err)
		}

		out.WatchAlbums[idx].ArtistName = artist
		result.Resolved++
		e.sendProgress(progress, lookupResultUpdate(step+1, len(missing), album, artist))
	}

	if result.Resolved > 0 {
		out.GeneratedAt = time.Now().UTC()
	}
	out.RecomputeStatistics()

	return &out, result, nil
}
