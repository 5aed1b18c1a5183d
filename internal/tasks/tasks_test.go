package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
)

func event(album, song string, play, media float64, at time.Time) models.PlayEvent {
	return models.PlayEvent{
		AlbumName:       album,
		SongName:        song,
		PlayDurationMs:  play,
		MediaDurationMs: media,
		EventTime:       at,
		DeviceType:      "Apple Watch",
	}
}

func TestAggregateSessions(t *testing.T) {
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	opts := AggregateOptions{ListenThreshold: 0.5}

	t.Run("tracks and completion", func(t *testing.T) {
		events := []models.PlayEvent{
			event("Album", "one", 200000, 200000, base),
			event("Album", "two", 50000, 200000, base.Add(5*time.Minute)),
			event("Album", "one", 200000, 200000, base.Add(10*time.Minute)),
		}

		records := AggregateSessions(events, opts)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		r := records[0]
		if r.TotalTracks != 2 || r.ListenedTracks != 1 {
			t.Errorf("expected 2 tracks with 1 listened, got %d/%d", r.ListenedTracks, r.TotalTracks)
		}
		if r.CompletionPercentage != 50.0 {
			t.Errorf("expected 50%% completion, got %f", r.CompletionPercentage)
		}
		if r.PlayCount != 3 {
			t.Errorf("expected 3 plays, got %d", r.PlayCount)
		}
		// 450000 played over 400000 nominal, clamped
		if r.CompletionRatio != 1.0 {
			t.Errorf("overplayed album should clamp to 1.0, got %f", r.CompletionRatio)
		}
	})

	t.Run("zero nominal duration yields zero ratio", func(t *testing.T) {
		events := []models.PlayEvent{event("Album", "one", 100000, 0, base)}

		records := AggregateSessions(events, opts)
		if records[0].CompletionRatio != 0 {
			t.Errorf("expected ratio 0, got %f", records[0].CompletionRatio)
		}
		if records[0].ListenedTracks != 0 {
			t.Error("track without media duration should not count as listened")
		}
	})

	t.Run("first and last listen", func(t *testing.T) {
		events := []models.PlayEvent{
			event("Album", "one", 1, 1, base.Add(time.Hour)),
			event("Album", "one", 1, 1, base),
			event("Album", "one", 1, 1, base.Add(2*time.Hour)),
		}

		records := AggregateSessions(events, opts)
		if !records[0].FirstListen.Equal(base) {
			t.Errorf("first listen should be earliest, got %v", records[0].FirstListen)
		}
		if !records[0].LastListen.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("last listen should be latest, got %v", records[0].LastListen)
		}
	})

	t.Run("watch only filter", func(t *testing.T) {
		phone := event("Phone Album", "one", 1, 1, base)
		phone.DeviceType = "iPhone"
		events := []models.PlayEvent{phone, event("Watch Album", "one", 1, 1, base)}

		watchOpts := opts
		watchOpts.WatchOnly = true
		records := AggregateSessions(events, watchOpts)
		if len(records) != 1 || records[0].AlbumName != "Watch Album" {
			t.Errorf("expected only the watch album, got %+v", records)
		}
	})

	t.Run("completion threshold drops albums", func(t *testing.T) {
		events := []models.PlayEvent{
			event("Skimmed", "one", 1000, 200000, base),
			event("Skimmed", "two", 1000, 200000, base),
			event("Finished", "one", 200000, 200000, base),
		}

		threshOpts := opts
		threshOpts.CompletionThreshold = 50
		records := AggregateSessions(events, threshOpts)
		if len(records) != 1 || records[0].AlbumName != "Finished" {
			t.Errorf("expected only the finished album, got %+v", records)
		}
	})

	t.Run("artist and genre maps applied", func(t *testing.T) {
		mapOpts := opts
		mapOpts.Artists = map[string]string{"Album": "Artist"}
		mapOpts.Genres = map[string]string{"Album": "Pop"}

		records := AggregateSessions([]models.PlayEvent{event("Album", "one", 1, 1, base)}, mapOpts)
		if records[0].ArtistName != "Artist" || records[0].Genre != "Pop" {
			t.Errorf("metadata maps not applied: %+v", records[0])
		}
	})

	t.Run("sorted by play count", func(t *testing.T) {
		events := []models.PlayEvent{
			event("Quiet", "one", 1, 1, base),
			event("Loud", "one", 1, 1, base),
			event("Loud", "one", 1, 1, base),
		}

		records := AggregateSessions(events, opts)
		if records[0].AlbumName != "Loud" {
			t.Errorf("most played album should come first, got %s", records[0].AlbumName)
		}
	})
}

func TestToggleStars(t *testing.T) {
	records := []models.AlbumRecord{
		{AlbumName: "GUTS", ArtistName: "Olivia Rodrigo"},
		{AlbumName: "SOS", ArtistName: "SZA", Starred: true},
	}

	t.Run("toggle by name", func(t *testing.T) {
		out, n := ToggleStars(records, ByAlbumName("guts"))
		if n != 1 {
			t.Fatalf("expected 1 toggle, got %d", n)
		}
		if !out[0].Starred {
			t.Error("GUTS should be starred")
		}
		if records[0].Starred {
			t.Error("input slice should be untouched")
		}
	})

	t.Run("toggle unstars", func(t *testing.T) {
		out, n := ToggleStars(records, ByAlbumName("SOS"))
		if n != 1 || out[1].Starred {
			t.Error("starred record should be unstarred")
		}
	})

	t.Run("substring matches artist too", func(t *testing.T) {
		_, n := ToggleStars(records, ByAlbumSubstring("sza"))
		if n != 1 {
			t.Errorf("expected artist substring match, got %d", n)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, n := ToggleStars(records, ByAlbumName("Nothing"))
		if n != 0 {
			t.Errorf("expected no toggles, got %d", n)
		}
	})

	t.Run("starred filter", func(t *testing.T) {
		starred := Starred(records)
		if len(starred) != 1 || starred[0].AlbumName != "SOS" {
			t.Errorf("unexpected starred set: %+v", starred)
		}
	})
}

// stubProvider returns canned activities, optionally with an error.
type stubProvider struct {
	activities []models.Activity
	err        error

	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubProvider) Name() string { return "Stub" }

func (s *stubProvider) ListActivities(_ context.Context, start, end time.Time) ([]models.Activity, error) {
	s.gotStart, s.gotEnd = start, end
	return s.activities, s.err
}

// stubLookup resolves artists from a fixed map.
type stubLookup struct {
	artists map[string]string
	err     error
}

func (s *stubLookup) Name() string { return "Stub" }

func (s *stubLookup) SearchArtist(_ context.Context, album string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	artist, ok := s.artists[album]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrArtistNotFound, album)
	}
	return artist, nil
}

func TestReportEngineAnalyze(t *testing.T) {
	engine := NewReportEngine(nil, nil)
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	t.Run("builds report and preserves stars", func(t *testing.T) {
		existing := &models.Report{
			WatchAlbums: []models.AlbumRecord{
				{AlbumName: "Album", Starred: true, FirstListen: base, LastListen: base},
			},
		}

		input := AnalyzeInput{
			Events:   []models.PlayEvent{event("Album", "one", 200000, 200000, base)},
			Options:  AggregateOptions{ListenThreshold: 0.5},
			Existing: existing,
		}

		progress := make(chan ProgressUpdate, 16)
		report, err := engine.Analyze(context.Background(), input, progress)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if len(report.WatchAlbums) != 1 {
			t.Fatalf("expected 1 record, got %d", len(report.WatchAlbums))
		}
		if !report.WatchAlbums[0].Starred {
			t.Error("star should survive reanalysis")
		}
		if report.Statistics.TotalAlbums != 1 {
			t.Error("statistics should be recomputed")
		}
		if report.GeneratedAt.IsZero() {
			t.Error("generated_at should be set")
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("no events", func(t *testing.T) {
		_, err := engine.Analyze(context.Background(), AnalyzeInput{}, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestReportEngineSyncStrava(t *testing.T) {
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	report := &models.Report{
		WatchAlbums: []models.AlbumRecord{
			{AlbumName: "Album", FirstListen: base, LastListen: base.Add(time.Hour)},
		},
	}
	opts := SyncOptions{Tolerance: 30 * time.Minute, BufferDays: 7}

	t.Run("fetches over buffered range and matches", func(t *testing.T) {
		provider := &stubProvider{activities: []models.Activity{
			{ActivityID: 1, Type: "Run", StartDate: base.Add(10 * time.Minute)},
			{ActivityID: 2, Type: "Ride", StartDate: base.Add(10 * time.Minute)},
		}}
		engine := NewReportEngine(provider, nil)

		out, result, err := engine.SyncStrava(context.Background(), report, opts, nil)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		wantStart := base.AddDate(0, 0, -7)
		if !provider.gotStart.Equal(wantStart) {
			t.Errorf("expected buffered start %v, got %v", wantStart, provider.gotStart)
		}
		if result.Runs != 1 {
			t.Errorf("ride should be filtered out, got %d runs", result.Runs)
		}
		if !out.WatchAlbums[0].HasRun() || out.WatchAlbums[0].StravaFields.ActivityID != 1 {
			t.Errorf("expected match to activity 1: %+v", out.WatchAlbums[0].StravaFields)
		}
		if report.WatchAlbums[0].HasRun() {
			t.Error("input report should not be mutated")
		}
	})

	t.Run("partial fetch still matches", func(t *testing.T) {
		provider := &stubProvider{
			activities: []models.Activity{{ActivityID: 1, Type: "Run", StartDate: base}},
			err:        fmt.Errorf("%w: page 2 failed", shared.ErrIncompleteFetch),
		}
		engine := NewReportEngine(provider, nil)

		out, result, err := engine.SyncStrava(context.Background(), report, opts, nil)
		if !errors.Is(err, shared.ErrIncompleteFetch) {
			t.Fatalf("expected ErrIncompleteFetch passthrough, got %v", err)
		}
		if out == nil || result.Match.Matched != 1 {
			t.Error("partial activities should still match and merge")
		}
	})

	t.Run("no provider", func(t *testing.T) {
		engine := NewReportEngine(nil, nil)
		if _, _, err := engine.SyncStrava(context.Background(), report, opts, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestReportEngineFetchArtists(t *testing.T) {
	report := &models.Report{
		WatchAlbums: []models.AlbumRecord{
			{AlbumName: "GUTS"},
			{AlbumName: "Known", ArtistName: "Already Set"},
			{AlbumName: "Mystery"},
		},
	}

	t.Run("resolves missing artists", func(t *testing.T) {
		lookup := &stubLookup{artists: map[string]string{"GUTS": "Olivia Rodrigo"}}
		engine := NewReportEngine(nil, lookup)

		out, result, err := engine.FetchArtists(context.Background(), report, nil)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if result.Missing != 2 || result.Resolved != 1 || result.NotFound != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		if out.WatchAlbums[0].ArtistName != "Olivia Rodrigo" {
			t.Errorf("artist not applied: %+v", out.WatchAlbums[0])
		}
		if out.WatchAlbums[1].ArtistName != "Already Set" {
			t.Error("records with artists should be left alone")
		}
		if report.WatchAlbums[0].ArtistName != "" {
			t.Error("input report should not be mutated")
		}
	})

	t.Run("hard failures stop the pass", func(t *testing.T) {
		lookup := &stubLookup{err: fmt.Errorf("%w: connection refused", shared.ErrServiceUnavailable)}
		engine := NewReportEngine(nil, lookup)

		_, _, err := engine.FetchArtists(context.Background(), report, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
