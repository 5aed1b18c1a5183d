package models

import (
	"strings"
	"time"
)

// PlayEvent is a single row from an Apple Music Play Activity export.
type PlayEvent struct {
	AlbumName       string
	SongName        string
	PlayDurationMs  float64
	MediaDurationMs float64
	EventTime       time.Time
	DeviceType      string
	DeviceOS        string
	DeviceName      string
}

// Listened reports whether the event counts as a real listen: the played
// fraction of the track meets threshold. A track with no known media
// duration never counts.
func (e PlayEvent) Listened(threshold float64) bool {
	if e.MediaDurationMs <= 0 {
		return false
	}
	return e.PlayDurationMs/e.MediaDurationMs >= threshold
}

// OnWatch reports whether the event was played on an Apple Watch, detected
// from the device type, OS, or client device name.
func (e PlayEvent) OnWatch() bool {
	device := strings.ToUpper(e.DeviceType + " " + e.DeviceOS + " " + e.DeviceName)
	return strings.Contains(device, "WATCH")
}
