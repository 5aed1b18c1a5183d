package models

import "time"

// Activity is a normalized Strava activity. Instances are immutable once
// fetched; matching and reporting read from them but never write.
type Activity struct {
	ActivityID          int64     `json:"id"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	SportType           string    `json:"sport_type"`
	StartDate           time.Time `json:"start_date"`
	DistanceMeters      float64   `json:"distance"`
	MovingTimeSeconds   int       `json:"moving_time"`
	ElapsedTimeSeconds  int       `json:"elapsed_time"`
	ElevationGainMeters float64   `json:"total_elevation_gain"`
	AverageSpeedMps     float64   `json:"average_speed"`
	MaxSpeedMps         float64   `json:"max_speed"`
	HasHeartrate        bool      `json:"has_heartrate"`
	AverageHeartrate    *float64  `json:"average_heartrate,omitempty"`
	MaxHeartrate        *float64  `json:"max_heartrate,omitempty"`
	AverageCadence      *float64  `json:"average_cadence,omitempty"`
	SufferScore         *float64  `json:"suffer_score,omitempty"`
}

// IsRun reports whether the activity is a run. Virtual (treadmill app)
// runs count.
func (a Activity) IsRun() bool {
	switch a.Type {
	case "Run", "VirtualRun":
		return true
	}
	switch a.SportType {
	case "Run", "VirtualRun":
		return true
	}
	return false
}
