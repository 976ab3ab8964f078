package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

// resolveCity reverse-geocodes an activity's start coordinates. Any
// failure degrades to the fixed placeholder, never to an error: a missing
// city must not lose the activity. One lookup per activity, no caching.
func (c *Client) resolveCity(ctx context.Context, raw model.RawActivity) string {
	lat, lon := raw.StartLatLon()

	url := fmt.Sprintf("%s/%v,%v?geoit=json", c.geocodeBase, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.RecordGeocodeError()
		return model.CityPlaceholder
	}

	resp, err := c.plain.Do(req)
	if err != nil {
		metrics.RecordGeocodeError()
		c.logger.Warn(ctx, "reverse geocode failed", logger.Error(err))
		return model.CityPlaceholder
	}
	defer func() { _ = resp.Body.Close() }()

	var geo struct {
		City string `json:"city"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		metrics.RecordGeocodeError()
		c.logger.Warn(ctx, "reverse geocode response unreadable", logger.Error(err))
		return model.CityPlaceholder
	}

	switch {
	case geo.City != "":
		return geo.City
	case geo.Name != "":
		return geo.Name
	default:
		metrics.RecordGeocodeError()
		return model.CityPlaceholder
	}
}
