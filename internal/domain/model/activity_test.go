package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	model "github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func rawFromJSON(t *testing.T, s string) model.RawActivity {
	t.Helper()
	var raw model.RawActivity
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return raw
}

func TestNormalizeFullActivity(t *testing.T) {
	raw := rawFromJSON(t, `{
		"name": "Morning Ride",
		"type": "Ride",
		"distance": 28099.8,
		"start_date_local": "2023-06-01T08:15:00Z",
		"elapsed_time": 4500,
		"moving_time": 4383,
		"kudos_count": 12,
		"kilojoules": 836.8,
		"total_elevation_gain": 315,
		"average_watts": 190.5,
		"achievement_count": 3,
		"start_latitude": 48.2,
		"start_longitude": 16.3
	}`)

	a := raw.Normalize("Vienna")

	convey.Convey("Given a complete raw activity", t, func() {
		convey.Convey("Then every field should be carried over", func() {
			convey.So(a.Title, convey.ShouldEqual, "Morning Ride")
			convey.So(a.City, convey.ShouldEqual, "Vienna")
			convey.So(a.Type, convey.ShouldEqual, "Ride")
			convey.So(a.Distance, convey.ShouldEqual, 28099.8)
			convey.So(a.Date.Format(time.RFC3339), convey.ShouldEqual, "2023-06-01T08:15:00Z")
			convey.So(a.Duration, convey.ShouldEqual, 4500.0)
			convey.So(a.MovingTime, convey.ShouldEqual, 4383.0)
			convey.So(a.Kudos, convey.ShouldEqual, 12)
			kilojoules := 836.8
			convey.So(a.Calories, convey.ShouldEqual, int(kilojoules*model.KilojoulesToKilocalories))
			convey.So(a.Elevation, convey.ShouldEqual, 315)
			convey.So(a.Power, convey.ShouldEqual, 190.5)
			convey.So(a.Trophies, convey.ShouldEqual, 3)
		})
	})
}

func TestNormalizeEmptyActivity(t *testing.T) {
	a := rawFromJSON(t, `{}`).Normalize(model.CityPlaceholder)

	convey.Convey("Given an empty raw activity", t, func() {
		convey.Convey("Then sentinel defaults should apply to every field", func() {
			convey.So(a.Title, convey.ShouldEqual, model.DefaultTitle)
			convey.So(a.City, convey.ShouldEqual, model.CityPlaceholder)
			convey.So(a.Type, convey.ShouldEqual, model.DefaultType)
			convey.So(a.Distance, convey.ShouldEqual, -1.0)
			convey.So(a.Date.Year(), convey.ShouldEqual, 2000)
			convey.So(a.Duration, convey.ShouldEqual, -1.0)
			convey.So(a.MovingTime, convey.ShouldEqual, -1.0)
			convey.So(a.Kudos, convey.ShouldEqual, -1)
			convey.So(a.Calories, convey.ShouldEqual, -1)
			convey.So(a.Elevation, convey.ShouldEqual, -1)
			convey.So(a.Power, convey.ShouldEqual, -1.0)
			convey.So(a.Trophies, convey.ShouldEqual, -1)
		})
	})
}

func TestNormalizeMalformedFields(t *testing.T) {
	raw := rawFromJSON(t, `{
		"name": 42,
		"distance": "far",
		"kudos_count": true,
		"start_date_local": "yesterday"
	}`)

	a := raw.Normalize("Graz")

	convey.Convey("Given malformed individual fields", t, func() {
		convey.Convey("Then each degrades independently without corrupting the rest", func() {
			convey.So(a.Title, convey.ShouldEqual, model.DefaultTitle)
			convey.So(a.Distance, convey.ShouldEqual, -1.0)
			convey.So(a.Kudos, convey.ShouldEqual, -1)
			convey.So(a.Date, convey.ShouldEqual, time.Unix(0, 0).UTC())
			convey.So(a.City, convey.ShouldEqual, "Graz")
		})
	})
}

func TestStartLatLon(t *testing.T) {
	raw := rawFromJSON(t, `{"start_latitude": 46.05, "start_longitude": 14.51}`)
	lat, lon := raw.StartLatLon()
	if lat != 46.05 || lon != 14.51 {
		t.Errorf("unexpected coordinates: %v, %v", lat, lon)
	}

	lat, lon = rawFromJSON(t, `{}`).StartLatLon()
	if lat != 0 || lon != 0 {
		t.Errorf("expected zero coordinates for missing fields, got %v, %v", lat, lon)
	}
}

func TestSortByDateDesc(t *testing.T) {
	mk := func(date string) model.Activity {
		ts, err := time.Parse(time.RFC3339, date)
		if err != nil {
			t.Fatalf("bad fixture date: %v", err)
		}
		return model.Activity{Date: ts}
	}

	activities := []model.Activity{
		mk("2023-01-02T00:00:00Z"),
		mk("2023-03-01T00:00:00Z"),
		mk("2023-02-15T00:00:00Z"),
	}
	model.SortByDateDesc(activities)

	for i := 1; i < len(activities); i++ {
		if activities[i].Date.After(activities[i-1].Date) {
			t.Errorf("activities not sorted descending at index %d", i)
		}
	}
}

func TestDecodeNotification(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int64
	}{
		{"valid id", `{"subscription_id": 120475}`, 120475},
		{"missing id", `{"object_type": "activity"}`, -1},
		{"malformed body", `{not json`, -1},
		{"empty body", ``, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := model.DecodeNotification(strings.NewReader(tc.body), "example.com")
			if n.SubscriptionID != tc.want {
				t.Errorf("expected subscription id %d, got %d", tc.want, n.SubscriptionID)
			}
			if n.Host != "example.com" {
				t.Errorf("unexpected host %q", n.Host)
			}
		})
	}
}
