// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// Normalization constants for activities coming off the Strava API.
const (
	// MaxActivityPage bounds how many recent activities a fetch returns.
	MaxActivityPage = 10

	// KilojoulesToKilocalories converts the API's kilojoules work field
	// into a calorie estimate.
	KilojoulesToKilocalories = 0.239006

	// DefaultTitle is used when an activity carries no name.
	DefaultTitle = "Strava Activity"

	// DefaultType is used when an activity carries no type.
	DefaultType = "Ride"

	// CityPlaceholder is used when reverse geocoding yields neither a
	// city nor a name.
	CityPlaceholder = "Paradise City"

	// dateLayout is the fixed format of start_date_local.
	dateLayout = "2006-01-02T15:04:05Z"

	// defaultDate stands in when the API omits the start date.
	defaultDate = "2000-01-01T00:00:00Z"
)

// Activity is the normalized shape republished on the event bus.
// Numeric fields use -1 as the missing-value sentinel.
type Activity struct {
	Title      string    `json:"title"`
	City       string    `json:"city"`
	Type       string    `json:"activity_type"`
	Distance   float64   `json:"distance"`
	Date       time.Time `json:"date"`
	Duration   float64   `json:"duration"`
	MovingTime float64   `json:"moving_time"`
	Kudos      int       `json:"kudos"`
	Calories   int       `json:"calories"`
	Elevation  int       `json:"elevation"`
	Power      float64   `json:"power"`
	Trophies   int       `json:"trophies"`
}

// RawActivity is one element of the API response, kept raw so that a
// malformed field degrades that field only instead of failing the whole
// page.
type RawActivity map[string]json.RawMessage

// String returns the string field under key, or def when absent or
// malformed.
func (r RawActivity) String(key, def string) string {
	raw, ok := r[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// Float returns the numeric field under key, or def when absent or
// malformed.
func (r RawActivity) Float(key string, def float64) float64 {
	raw, ok := r[key]
	if !ok {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return def
	}
	return f
}

// Int returns the numeric field under key truncated to int, or def when
// absent or malformed.
func (r RawActivity) Int(key string, def int) int {
	return int(r.Float(key, float64(def)))
}

// StartLatLon returns the activity's start coordinates, zero when absent.
func (r RawActivity) StartLatLon() (float64, float64) {
	return r.Float("start_latitude", 0), r.Float("start_longitude", 0)
}

// Date parses start_date_local. A missing field yields the fixed default
// date; an unparsable value yields the Unix epoch.
func (r RawActivity) Date() time.Time {
	s := r.String("start_date_local", defaultDate)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// Normalize converts a raw activity plus its resolved city into the
// published shape, applying the sentinel defaults field by field.
func (r RawActivity) Normalize(city string) Activity {
	calories := -1
	if kj, ok := r["kilojoules"]; ok {
		var f float64
		if err := json.Unmarshal(kj, &f); err == nil {
			calories = int(f * KilojoulesToKilocalories)
		}
	}

	return Activity{
		Title:      r.String("name", DefaultTitle),
		City:       city,
		Type:       r.String("type", DefaultType),
		Distance:   r.Float("distance", -1),
		Date:       r.Date(),
		Duration:   r.Float("elapsed_time", -1),
		MovingTime: r.Float("moving_time", -1),
		Kudos:      r.Int("kudos_count", -1),
		Calories:   calories,
		Elevation:  r.Int("total_elevation_gain", -1),
		Power:      r.Float("average_watts", -1),
		Trophies:   r.Int("achievement_count", -1),
	}
}

// SortByDateDesc orders activities most recent first.
func SortByDateDesc(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
}
