package models

import (
	"fmt"
	"math"
	"time"

	"github.com/desertthunder/tempo/internal/shared"
)

// metersPerMile converts Strava's metric distances to miles for display.
const metersPerMile = 1609.344

// AlbumRecord is one album's aggregated listen session as it appears in the
// report. StravaFields is nil for albums not matched to a run, so the
// strava_* keys are absent from the JSON rather than zeroed.
type AlbumRecord struct {
	AlbumName            string    `json:"album_name"`
	ArtistName           string    `json:"artist_name"`
	Genre                string    `json:"genre,omitempty"`
	TotalTracks          int       `json:"total_tracks"`
	ListenedTracks       int       `json:"listened_tracks"`
	CompletionRatio      float64   `json:"completion_ratio"`
	CompletionPercentage float64   `json:"completion_percentage"`
	PlayCount            int       `json:"play_count"`
	FirstListen          time.Time `json:"first_listen"`
	LastListen           time.Time `json:"last_listen"`
	Starred              bool      `json:"starred"`

	*StravaFields
}

// Key returns the record's identity key: album and artist names,
// case-insensitive with whitespace collapsed.
func (r AlbumRecord) Key() string {
	return shared.NormalizeKey(r.AlbumName, r.ArtistName)
}

// HasRun reports whether the record was matched to a Strava activity.
func (r AlbumRecord) HasRun() bool {
	return r.StravaFields != nil
}

// Validate checks the record's derived fields for internal consistency.
func (r AlbumRecord) Validate() error {
	if r.AlbumName == "" {
		return fmt.Errorf("%w: album name is required", shared.ErrInvalidInput)
	}
	if r.CompletionRatio < 0 || r.CompletionRatio > 1 {
		return fmt.Errorf("%w: completion ratio %f outside [0, 1]", shared.ErrInvalidInput, r.CompletionRatio)
	}
	if r.ListenedTracks > r.TotalTracks {
		return fmt.Errorf("%w: listened tracks exceed total tracks", shared.ErrInvalidInput)
	}
	if r.LastListen.Before(r.FirstListen) {
		return fmt.Errorf("%w: last listen precedes first listen", shared.ErrInvalidInput)
	}
	return nil
}

// StravaFields holds run metrics attached to a matched album record. All
// fields serialize under strava_* keys alongside the album fields.
type StravaFields struct {
	ActivityID          int64     `json:"strava_activity_id"`
	ActivityName        string    `json:"strava_activity_name"`
	ActivityType        string    `json:"strava_activity_type"`
	StartDate           time.Time `json:"strava_start_date"`
	DistanceMiles       float64   `json:"strava_distance_miles"`
	DistanceMeters      float64   `json:"strava_distance_meters"`
	MovingTimeSeconds   int       `json:"strava_moving_time_seconds"`
	ElapsedTimeSeconds  int       `json:"strava_elapsed_time_seconds"`
	PacePerMile         string    `json:"strava_pace_per_mile"`
	ElevationGainMeters float64   `json:"strava_elevation_gain_meters"`
	AverageSpeedMps     float64   `json:"strava_average_speed_mps"`
	MaxSpeedMps         float64   `json:"strava_max_speed_mps"`
	AverageHeartrate    *float64  `json:"strava_average_heartrate,omitempty"`
	MaxHeartrate        *float64  `json:"strava_max_heartrate,omitempty"`
	AverageCadence      *float64  `json:"strava_average_cadence,omitempty"`
	SufferScore         *float64  `json:"strava_suffer_score,omitempty"`
	HasHeartrate        bool      `json:"strava_has_heartrate"`
}

// NewStravaFields extracts report metrics from an activity.
func NewStravaFields(a Activity) *StravaFields {
	miles := MetersToMiles(a.DistanceMeters)
	activityType := a.Type
	if activityType == "" {
		activityType = a.SportType
	}
	return &StravaFields{
		ActivityID:          a.ActivityID,
		ActivityName:        a.Name,
		ActivityType:        activityType,
		StartDate:           a.StartDate,
		DistanceMiles:       miles,
		DistanceMeters:      a.DistanceMeters,
		MovingTimeSeconds:   a.MovingTimeSeconds,
		ElapsedTimeSeconds:  a.ElapsedTimeSeconds,
		PacePerMile:         FormatPace(a.MovingTimeSeconds, miles),
		ElevationGainMeters: a.ElevationGainMeters,
		AverageSpeedMps:     a.AverageSpeedMps,
		MaxSpeedMps:         a.MaxSpeedMps,
		AverageHeartrate:    a.AverageHeartrate,
		MaxHeartrate:        a.MaxHeartrate,
		AverageCadence:      a.AverageCadence,
		SufferScore:         a.SufferScore,
		HasHeartrate:        a.HasHeartrate,
	}
}

// MetersToMiles converts meters to miles, rounded to two decimal places.
func MetersToMiles(meters float64) float64 {
	return math.Round(meters/metersPerMile*100) / 100
}

// FormatPace renders seconds-per-mile pace as "M:SS". Zero or negative
// distance yields an empty string.
func FormatPace(movingTimeSeconds int, miles float64) string {
	if miles <= 0 || movingTimeSeconds <= 0 {
		return ""
	}
	paceSeconds := float64(movingTimeSeconds) / miles
	minutes := int(paceSeconds) / 60
	seconds := int(paceSeconds) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
