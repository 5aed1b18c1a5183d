package tasks

import (
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/models"
)

var matchBase = time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

func session(album string, firstListen time.Time) models.AlbumRecord {
	return models.AlbumRecord{
		AlbumName:   album,
		FirstListen: firstListen,
		LastListen:  firstListen.Add(time.Hour),
	}
}

func run(id int64, start time.Time) models.Activity {
	return models.Activity{ActivityID: id, Type: "Run", StartDate: start}
}

func TestMatchRunsWindow(t *testing.T) {
	tolerance := 30 * time.Minute

	tc := []struct {
		name      string
		offset    time.Duration
		wantMatch bool
	}{
		{name: "activity at first listen", offset: 0, wantMatch: true},
		{name: "activity 29 minutes after", offset: 29 * time.Minute, wantMatch: true},
		{name: "exactly at plus tolerance", offset: 30 * time.Minute, wantMatch: true},
		{name: "exactly at minus tolerance", offset: -30 * time.Minute, wantMatch: true},
		{name: "just outside window", offset: 30*time.Minute + time.Second, wantMatch: false},
		{name: "well outside window", offset: -2 * time.Hour, wantMatch: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			records := []models.AlbumRecord{session("Album", matchBase)}
			activities := []models.Activity{run(1, matchBase.Add(tt.offset))}

			matched, result := MatchRuns(records, activities, tolerance)
			if got := matched[0].HasRun(); got != tt.wantMatch {
				t.Errorf("HasRun() = %v, want %v", got, tt.wantMatch)
			}
			if tt.wantMatch && result.Matched != 1 {
				t.Errorf("expected matched count 1, got %d", result.Matched)
			}
			if !tt.wantMatch && result.Unmatched != 1 {
				t.Errorf("expected unmatched count 1, got %d", result.Unmatched)
			}
		})
	}
}

func TestMatchRunsClosestWins(t *testing.T) {
	records := []models.AlbumRecord{session("Album", matchBase)}
	activities := []models.Activity{
		run(1, matchBase.Add(-25*time.Minute)),
		run(2, matchBase.Add(5*time.Minute)),
		run(3, matchBase.Add(20*time.Minute)),
	}

	matched, _ := MatchRuns(records, activities, 30*time.Minute)
	if !matched[0].HasRun() || matched[0].StravaFields.ActivityID != 2 {
		t.Errorf("closest activity should win, got %+v", matched[0].StravaFields)
	}
}

func TestMatchRunsTieBreaksToLowestID(t *testing.T) {
	records := []models.AlbumRecord{session("Album", matchBase)}
	// Equidistant: 10 minutes before and after
	activities := []models.Activity{
		run(9, matchBase.Add(10*time.Minute)),
		run(4, matchBase.Add(-10*time.Minute)),
	}

	matched, _ := MatchRuns(records, activities, 30*time.Minute)
	if matched[0].StravaFields.ActivityID != 4 {
		t.Errorf("tie should break to lowest activity id, got %d", matched[0].StravaFields.ActivityID)
	}
}

func TestMatchRunsMultiAlbumRun(t *testing.T) {
	records := []models.AlbumRecord{
		session("First", matchBase),
		session("Second", matchBase.Add(10*time.Minute)),
		session("Third", matchBase.Add(20*time.Minute)),
		session("Elsewhere", matchBase.Add(6*time.Hour)),
	}
	activities := []models.Activity{
		run(1, matchBase.Add(5*time.Minute)),
		run(2, matchBase.Add(6*time.Hour)),
	}

	matched, result := MatchRuns(records, activities, 30*time.Minute)

	if result.Matched != 4 {
		t.Errorf("expected 4 matches, got %d", result.Matched)
	}
	albums, ok := result.MultiAlbumRuns[1]
	if !ok {
		t.Fatal("activity 1 should be flagged as a multi-album run")
	}
	if len(albums) != 3 {
		t.Errorf("expected 3 albums on activity 1, got %v", albums)
	}
	if _, ok := result.MultiAlbumRuns[2]; ok {
		t.Error("single-album activity should not be flagged")
	}
	for _, rec := range matched[:3] {
		if rec.StravaFields.ActivityID != 1 {
			t.Errorf("expected activity 1 for %s, got %d", rec.AlbumName, rec.StravaFields.ActivityID)
		}
	}
}

func TestMatchRunsLeavesInputUntouched(t *testing.T) {
	records := []models.AlbumRecord{session("Album", matchBase)}
	activities := []models.Activity{run(1, matchBase)}

	MatchRuns(records, activities, 30*time.Minute)
	if records[0].HasRun() {
		t.Error("input slice should not be modified")
	}
}

func TestMatchRunsNoListenDate(t *testing.T) {
	records := []models.AlbumRecord{{AlbumName: "No Dates"}}
	activities := []models.Activity{run(1, matchBase)}

	matched, result := MatchRuns(records, activities, 30*time.Minute)
	if matched[0].HasRun() {
		t.Error("record without a first listen should not match")
	}
	if result.Unmatched != 1 {
		t.Errorf("expected unmatched count 1, got %d", result.Unmatched)
	}
}
