package applemusic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
)

// Apple's export varies timestamp formats between generations.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseResult carries the events parsed from a Play Activity export along
// with counts for rows that could not be used.
type ParseResult struct {
	Events  []models.PlayEvent
	Total   int
	Skipped int
}

// ParsePlayActivity reads an Apple Music Play Activity CSV. Rows missing an
// album or song name are skipped and counted, never fatal. Unparsable
// durations degrade to zero so the row still contributes a play.
func ParsePlayActivity(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", shared.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	result := &ParseResult{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			continue
		}
		result.Total++

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		album := field("Album Name")
		if album == "" {
			album = field("Container Album Name")
		}
		if album == "" {
			album = field("Container Name")
		}
		album = shared.StripSingleSuffix(album)
		song := field("Song Name")

		if album == "" || song == "" {
			result.Skipped++
			continue
		}

		event := models.PlayEvent{
			AlbumName:       album,
			SongName:        song,
			PlayDurationMs:  parseDuration(field("Play Duration Milliseconds")),
			MediaDurationMs: parseDuration(field("Media Duration In Milliseconds")),
			DeviceType:      field("Device Type"),
			DeviceOS:        field("Device OS Name"),
			DeviceName:      field("Client Device Name"),
		}

		ts := field("Event End Timestamp")
		if ts == "" {
			ts = field("Event Start Timestamp")
		}
		if ts != "" {
			event.EventTime = parseTimestamp(ts)
		}

		result.Events = append(result.Events, event)
	}

	return result, nil
}

func parseDuration(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
