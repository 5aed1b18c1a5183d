// package formatter provides functions to export report data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
)

// ExportToCSV converts album records to CSV with one row per album.
func ExportToCSV(records []models.AlbumRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{
		"Album", "Artist", "Genre", "Tracks", "Listened", "Completion %",
		"Plays", "First Listen", "Last Listen", "Starred", "Run", "Distance (mi)", "Pace",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		runName, distance, pace := "", "", ""
		if rec.HasRun() {
			runName = rec.StravaFields.ActivityName
			distance = strconv.FormatFloat(rec.StravaFields.DistanceMiles, 'f', 2, 64)
			pace = rec.StravaFields.PacePerMile
		}

		row := []string{
			rec.AlbumName,
			rec.ArtistName,
			rec.Genre,
			strconv.Itoa(rec.TotalTracks),
			strconv.Itoa(rec.ListenedTracks),
			strconv.FormatFloat(rec.CompletionPercentage, 'f', 1, 64),
			strconv.Itoa(rec.PlayCount),
			formatDate(rec.FirstListen),
			formatDate(rec.LastListen),
			strconv.FormatBool(rec.Starred),
			runName,
			distance,
			pace,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to a Markdown summary.
func ExportToMarkdown(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Listening Report\n\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	buf.WriteString(fmt.Sprintf("**Albums**: %d\n", report.Statistics.TotalAlbums))
	buf.WriteString(fmt.Sprintf("**Starred**: %d\n", report.Statistics.StarredAlbums))
	buf.WriteString(fmt.Sprintf("**Matched runs**: %d\n", report.Statistics.MatchedRuns))
	buf.WriteString(fmt.Sprintf("**Total plays**: %d\n\n", report.Statistics.TotalPlays))

	buf.WriteString("## Albums\n\n")
	for i, rec := range report.WatchAlbums {
		star := ""
		if rec.Starred {
			star = " ★"
		}
		artistPart := ""
		if rec.ArtistName != "" {
			artistPart = fmt.Sprintf("%s - ", rec.ArtistName)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s%s (%d plays, %.1f%%)\n", i+1, artistPart, rec.AlbumName, star, rec.PlayCount, rec.CompletionPercentage))
		if rec.HasRun() {
			buf.WriteString(fmt.Sprintf("   - Run: %s, %.2f mi @ %s/mi\n", rec.StravaFields.ActivityName, rec.StravaFields.DistanceMiles, rec.StravaFields.PacePerMile))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts album records to plain text.
func ExportToText(records []models.AlbumRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums: %d\n\n", len(records)))
	for i, rec := range records {
		star := " "
		if rec.Starred {
			star = "*"
		}
		artist := rec.ArtistName
		if artist == "" {
			artist = "Unknown Artist"
		}
		buf.WriteString(fmt.Sprintf("%s %d. %s - %s (%d plays)\n", star, i+1, artist, rec.AlbumName, rec.PlayCount))
	}

	return buf.Bytes(), nil
}

// WriteReportJSON marshals a report and writes it atomically, so the
// viewer never reads a half-written document.
func WriteReportJSON(report *models.Report, path string) error {
	data, err := shared.MarshalJSON(report, true)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := shared.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
