// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/models"
)

// MockProvider is a test double for [services.ActivityProvider]
type MockProvider struct {
	Activities []models.Activity
	Err        error
	Calls      int
}

func (m *MockProvider) ListActivities(ctx context.Context, start, end time.Time) ([]models.Activity, error) {
	m.Calls++
	return m.Activities, m.Err
}

func (m *MockProvider) Name() string { return "mock provider" }

// MockLookup is a test double for [services.ArtistLookup]
type MockLookup struct {
	Artists map[string]string
	Err     error
	Calls   int
}

func (m *MockLookup) SearchArtist(ctx context.Context, album string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Artists[album], nil
}

func (m *MockLookup) Name() string { return "mock lookup" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// SampleReport builds a small report with one starred album and one
// unmatched album, useful as a fixture for command tests.
func SampleReport() *models.Report {
	report := &models.Report{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Config: models.ReportConfig{
			CompletionThreshold: 50,
			ListenThreshold:     0.5,
			ToleranceMinutes:    30,
		},
		WatchAlbums: []models.AlbumRecord{
			{
				AlbumName:            "GUTS",
				ArtistName:           "Olivia Rodrigo",
				TotalTracks:          12,
				ListenedTracks:       12,
				CompletionRatio:      1,
				CompletionPercentage: 100,
				PlayCount:            24,
				FirstListen:          time.Date(2025, 5, 10, 7, 0, 0, 0, time.UTC),
				LastListen:           time.Date(2025, 5, 10, 7, 45, 0, 0, time.UTC),
				Starred:              true,
			},
			{
				AlbumName:            "SOS",
				TotalTracks:          23,
				ListenedTracks:       14,
				CompletionRatio:      0.61,
				CompletionPercentage: 60.9,
				PlayCount:            18,
				FirstListen:          time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC),
				LastListen:           time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC),
			},
		},
	}
	report.RecomputeStatistics()
	return report
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
