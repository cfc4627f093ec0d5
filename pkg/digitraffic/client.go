// Package digitraffic talks to the Digitraffic road weather API: the
// forecast-section catalog the resolver matches against, the forecast feed
// used for tie-breaking, and the weather station metadata.
package digitraffic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// DefaultBaseURL is the production Digitraffic road weather API.
const DefaultBaseURL = "https://tie.digitraffic.fi/api/weather/v1"

const (
	metadataPath = "/forecast-sections"
	forecastPath = "/forecast-sections/forecasts"
	stationsPath = "/stations"
)

// Config holds client settings.
type Config struct {
	BaseURL   string         // "" = DefaultBaseURL
	UserAgent string         // sent on every request
	Timeout   time.Duration  // per-request, 0 = 30s
	Cache     *SnapshotCache // nil disables the last-known-good fallback
	Logger    *slog.Logger
}

// Client fetches catalog and feed documents. It implements
// resolve.CatalogProvider and resolve.ObservationProvider.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *SnapshotCache
	logger     *slog.Logger
}

// NewClient builds a Client with defaults filled in.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cfg.Cache,
		logger:     cfg.Logger,
	}
}

// featureCollection is the GeoJSON envelope both metadata feeds use.
type featureCollection struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// Catalog fetches the forecast-section metadata and returns one record per
// feature. On fetch failure the last cached snapshot is served when a cache
// is configured.
func (c *Client) Catalog(ctx context.Context) ([]resolve.Record, error) {
	var doc featureCollection
	if err := c.getJSON(ctx, metadataPath, &doc); err != nil {
		if cached, cacheErr := c.cachedCatalog(); cacheErr == nil {
			c.logger.Warn("catalog fetch failed, serving cached snapshot", "error", err)
			return cached, nil
		}
		return nil, err
	}

	records := make([]resolve.Record, 0, len(doc.Features))
	for _, f := range doc.Features {
		rec := resolve.RecordFromProperties(f.Properties)
		if rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}

	if c.cache != nil {
		if err := c.cache.Store(snapshotCatalog, records); err != nil {
			c.logger.Warn("catalog snapshot not cached", "error", err)
		}
	}
	return records, nil
}

func (c *Client) cachedCatalog() ([]resolve.Record, error) {
	if c.cache == nil {
		return nil, errNoCache
	}
	var records []resolve.Record
	if _, err := c.cache.Load(snapshotCatalog, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// forecastDoc is the forecasts feed envelope.
type forecastDoc struct {
	ForecastSections []struct {
		ID        string `json:"id"`
		Forecasts []struct {
			Type                    string    `json:"type"`
			Time                    time.Time `json:"time"`
			OverallRoadCondition    string    `json:"overallRoadCondition"`
			ForecastConditionReason struct {
				RoadCondition string `json:"roadCondition"`
			} `json:"forecastConditionReason"`
		} `json:"forecasts"`
	} `json:"forecastSections"`
}

// Observations fetches the forecast feed and groups FORECAST entries by
// section id. Observations are time-sensitive, so they are never served
// from the snapshot cache.
func (c *Client) Observations(ctx context.Context) (resolve.Observations, error) {
	var doc forecastDoc
	if err := c.getJSON(ctx, forecastPath, &doc); err != nil {
		return nil, err
	}

	obs := make(resolve.Observations, len(doc.ForecastSections))
	for _, fs := range doc.ForecastSections {
		for _, f := range fs.Forecasts {
			if f.Type != "FORECAST" {
				continue
			}
			obs[fs.ID] = append(obs[fs.ID], resolve.Observation{
				Time:             f.Time,
				OverallCondition: f.OverallRoadCondition,
				RoadCondition:    f.ForecastConditionReason.RoadCondition,
			})
		}
	}
	return obs, nil
}

// SearchStations fetches weather station metadata and scores it against the
// query. Fetch failures fall back to the cached station list when possible.
func (c *Client) SearchStations(ctx context.Context, query string, max int) ([]resolve.Station, error) {
	stations, err := c.stations(ctx)
	if err != nil {
		return nil, err
	}
	return resolve.SearchStations(query, stations, max, nil), nil
}

func (c *Client) stations(ctx context.Context) ([]resolve.Station, error) {
	var doc featureCollection
	if err := c.getJSON(ctx, stationsPath, &doc); err != nil {
		if c.cache != nil {
			var cached []resolve.Station
			if _, cacheErr := c.cache.Load(snapshotStations, &cached); cacheErr == nil {
				c.logger.Warn("station fetch failed, serving cached snapshot", "error", err)
				return cached, nil
			}
		}
		return nil, err
	}

	stations := make([]resolve.Station, 0, len(doc.Features))
	for _, f := range doc.Features {
		st := stationFromProperties(f.Properties)
		if st.ID == 0 {
			continue
		}
		stations = append(stations, st)
	}

	if c.cache != nil {
		if err := c.cache.Store(snapshotStations, stations); err != nil {
			c.logger.Warn("station snapshot not cached", "error", err)
		}
	}
	return stations, nil
}

func stationFromProperties(props map[string]any) resolve.Station {
	var st resolve.Station
	if n, ok := props["id"].(float64); ok {
		st.ID = int(n)
	}
	if s, ok := props["name"].(string); ok {
		st.Name = s
	}
	if names, ok := props["names"].(map[string]any); ok {
		st.Names = make(map[string]string, len(names))
		for lang, v := range names {
			if s, ok := v.(string); ok {
				st.Names[lang] = s
			}
		}
	}
	return st
}

// retryBaseDelay is the backoff unit between retries; tests shrink it.
var retryBaseDelay = time.Second

// getJSON fetches baseURL+path with bounded retries and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * retryBaseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode %s: %w", url, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("GET %s failed after retries: %w", url, lastErr)
}
