package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPlayEventListened(t *testing.T) {
	tc := []struct {
		name      string
		play      float64
		media     float64
		threshold float64
		want      bool
	}{
		{name: "full play", play: 200000, media: 200000, threshold: 0.5, want: true},
		{name: "exactly at threshold", play: 100000, media: 200000, threshold: 0.5, want: true},
		{name: "below threshold", play: 99999, media: 200000, threshold: 0.5, want: false},
		{name: "zero media duration", play: 100000, media: 0, threshold: 0.5, want: false},
		{name: "negative media duration", play: 100000, media: -1, threshold: 0.5, want: false},
		{name: "overplay counts", play: 400000, media: 200000, threshold: 0.5, want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			e := PlayEvent{PlayDurationMs: tt.play, MediaDurationMs: tt.media}
			if got := e.Listened(tt.threshold); got != tt.want {
				t.Errorf("Listened() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayEventOnWatch(t *testing.T) {
	tc := []struct {
		name  string
		event PlayEvent
		want  bool
	}{
		{name: "device type", event: PlayEvent{DeviceType: "Apple Watch"}, want: true},
		{name: "os", event: PlayEvent{DeviceOS: "WatchOS 10.1"}, want: true},
		{name: "device name", event: PlayEvent{DeviceName: "Avery's Watch"}, want: true},
		{name: "phone", event: PlayEvent{DeviceType: "iPhone", DeviceOS: "iOS 17"}, want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.OnWatch(); got != tt.want {
				t.Errorf("OnWatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivityIsRun(t *testing.T) {
	tc := []struct {
		name     string
		activity Activity
		want     bool
	}{
		{name: "run", activity: Activity{Type: "Run"}, want: true},
		{name: "virtual run", activity: Activity{Type: "VirtualRun"}, want: true},
		{name: "sport type run", activity: Activity{SportType: "Run"}, want: true},
		{name: "ride", activity: Activity{Type: "Ride"}, want: false},
		{name: "walk", activity: Activity{Type: "Walk", SportType: "Walk"}, want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.IsRun(); got != tt.want {
				t.Errorf("IsRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlbumRecordJSON(t *testing.T) {
	base := AlbumRecord{
		AlbumName:   "Renaissance",
		ArtistName:  "Beyoncé",
		TotalTracks: 16,
		PlayCount:   20,
		FirstListen: time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC),
		LastListen:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	t.Run("unmatched record omits strava fields", func(t *testing.T) {
		data, err := json.Marshal(base)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if strings.Contains(string(data), "strava_") {
			t.Errorf("unmatched record should carry no strava keys: %s", data)
		}
	})

	t.Run("matched record includes strava fields", func(t *testing.T) {
		rec := base
		rec.StravaFields = NewStravaFields(Activity{
			ActivityID:        42,
			Name:              "Morning Run",
			Type:              "Run",
			DistanceMeters:    5000,
			MovingTimeSeconds: 1500,
		})
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		s := string(data)
		if !strings.Contains(s, `"strava_activity_id":42`) {
			t.Errorf("expected activity id in JSON: %s", s)
		}
		if !strings.Contains(s, `"strava_distance_miles":3.11`) {
			t.Errorf("expected distance in miles: %s", s)
		}
		if strings.Contains(s, "strava_average_heartrate") {
			t.Errorf("absent heartrate should be omitted: %s", s)
		}
	})
}

func TestAlbumRecordKey(t *testing.T) {
	a := AlbumRecord{AlbumName: "SOS", ArtistName: "SZA"}
	b := AlbumRecord{AlbumName: "  sos ", ArtistName: "sza"}
	if a.Key() != b.Key() {
		t.Errorf("keys should match: %q vs %q", a.Key(), b.Key())
	}
}

func TestAlbumRecordValidate(t *testing.T) {
	valid := AlbumRecord{
		AlbumName:       "GUTS",
		TotalTracks:     12,
		ListenedTracks:  8,
		CompletionRatio: 0.66,
		FirstListen:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastListen:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid record should pass: %v", err)
	}

	tc := []struct {
		name   string
		mutate func(*AlbumRecord)
	}{
		{name: "missing album", mutate: func(r *AlbumRecord) { r.AlbumName = "" }},
		{name: "ratio above one", mutate: func(r *AlbumRecord) { r.CompletionRatio = 1.2 }},
		{name: "listened exceeds total", mutate: func(r *AlbumRecord) { r.ListenedTracks = 13 }},
		{name: "inverted listen range", mutate: func(r *AlbumRecord) { r.LastListen = r.FirstListen.Add(-time.Hour) }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			if err := rec.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		miles   float64
		want    string
	}{
		{name: "ten minute miles", seconds: 1864, miles: 3.11, want: "9:59"},
		{name: "even pace", seconds: 1800, miles: 3.0, want: "10:00"},
		{name: "zero distance", seconds: 1800, miles: 0, want: ""},
		{name: "zero time", seconds: 0, miles: 3.0, want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPace(tt.seconds, tt.miles); got != tt.want {
				t.Errorf("FormatPace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetersToMiles(t *testing.T) {
	if got := MetersToMiles(1609.344); got != 1.0 {
		t.Errorf("one mile should round to 1.0, got %v", got)
	}
	if got := MetersToMiles(5000); got != 3.11 {
		t.Errorf("5k should round to 3.11, got %v", got)
	}
}

func TestReportStatistics(t *testing.T) {
	matched := NewStravaFields(Activity{ActivityID: 7, Type: "Run"})
	report := Report{
		WatchAlbums: []AlbumRecord{
			{AlbumName: "A", PlayCount: 10, CompletionPercentage: 80, Starred: true, StravaFields: matched},
			{AlbumName: "B", PlayCount: 5, CompletionPercentage: 60, StravaFields: matched},
			{AlbumName: "C", PlayCount: 3, CompletionPercentage: 100},
		},
	}
	report.RecomputeStatistics()

	if report.Statistics.TotalAlbums != 3 {
		t.Errorf("expected 3 albums, got %d", report.Statistics.TotalAlbums)
	}
	if report.Statistics.StarredAlbums != 1 {
		t.Errorf("expected 1 starred, got %d", report.Statistics.StarredAlbums)
	}
	if report.Statistics.MatchedRuns != 1 {
		t.Errorf("two albums on one run should count one matched run, got %d", report.Statistics.MatchedRuns)
	}
	if report.Statistics.TotalPlays != 18 {
		t.Errorf("expected 18 plays, got %d", report.Statistics.TotalPlays)
	}
	if report.Statistics.AverageCompletion != 80.0 {
		t.Errorf("expected average completion 80.0, got %f", report.Statistics.AverageCompletion)
	}
}

func TestReportDateRange(t *testing.T) {
	t.Run("empty report", func(t *testing.T) {
		var report Report
		if _, _, ok := report.DateRange(); ok {
			t.Error("empty report should have no date range")
		}
	})

	t.Run("spans records", func(t *testing.T) {
		report := Report{
			WatchAlbums: []AlbumRecord{
				{
					FirstListen: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
					LastListen:  time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
				},
				{
					FirstListen: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
					LastListen:  time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
				},
			},
		}
		start, end, ok := report.DateRange()
		if !ok {
			t.Fatal("expected a date range")
		}
		if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected start: %v", start)
		}
		if !end.Equal(time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end: %v", end)
		}
	})
}
