package digitraffic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func init() {
	retryBaseDelay = time.Millisecond
}

const metadataBody = `{
	"features": [
		{"properties": {"id": "00003_250_00000_1_0", "description": "Valtatie 3 Helsinki", "roadNumber": 3, "roadSectionNumber": 250, "length": 4520}},
		{"properties": {"id": "00004_421_00000_1_0", "description": "Kemintie", "roadNumber": 4, "roadSectionNumber": 421}},
		{"properties": {"description": "no id, skipped"}}
	]
}`

const forecastBody = `{
	"forecastSections": [
		{"id": "00003_250_00000_1_0", "forecasts": [
			{"type": "OBSERVATION", "time": "2026-01-10T10:00:00Z", "overallRoadCondition": "POOR_CONDITION"},
			{"type": "FORECAST", "time": "2026-01-10T12:00:00Z", "overallRoadCondition": "NORMAL_CONDITION", "forecastConditionReason": {"roadCondition": "DRY"}},
			{"type": "FORECAST", "time": "2026-01-10T14:00:00Z", "overallRoadCondition": "POOR_CONDITION", "forecastConditionReason": {"roadCondition": "ICE"}}
		]}
	]
}`

const stationsBody = `{
	"features": [
		{"properties": {"id": 23001, "name": "vt4_Kemintie", "names": {"fi": "Tie 4 Kemintie"}}},
		{"properties": {"id": 23002, "name": "vt4_Tuusula", "names": {"fi": "Tie 4 Tuusula"}}}
	]
}`

func testServer(t *testing.T, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if fail != nil && fail.Load() {
				http.Error(w, "boom", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}
	mux.HandleFunc("GET /forecast-sections", serve(metadataBody))
	mux.HandleFunc("GET /forecast-sections/forecasts", serve(forecastBody))
	mux.HandleFunc("GET /stations", serve(stationsBody))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCatalogParsesFeatures(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(Config{BaseURL: srv.URL})

	records, err := c.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (feature without id skipped)", len(records))
	}
	rec := records[0]
	if rec.ID != "00003_250_00000_1_0" || rec.Description != "Valtatie 3 Helsinki" {
		t.Errorf("record = %+v", rec)
	}
	if rec.RoadNumber == nil || *rec.RoadNumber != 3 {
		t.Errorf("roadNumber = %v, want 3", rec.RoadNumber)
	}
	if rec.Extra["length"] != float64(4520) {
		t.Errorf("extra length = %v, want passthrough", rec.Extra["length"])
	}
}

func TestObservationsGroupsForecastEntries(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(Config{BaseURL: srv.URL})

	obs, err := c.Observations(context.Background())
	if err != nil {
		t.Fatalf("Observations: %v", err)
	}
	series := obs["00003_250_00000_1_0"]
	if len(series) != 2 {
		t.Fatalf("series = %d, want 2 (OBSERVATION entries excluded)", len(series))
	}
	if series[0].OverallCondition != "NORMAL_CONDITION" || series[0].RoadCondition != "DRY" {
		t.Errorf("first entry = %+v", series[0])
	}
}

func TestSearchStations(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(Config{BaseURL: srv.URL})

	got, err := c.SearchStations(context.Background(), "Tuusula", 12)
	if err != nil {
		t.Fatalf("SearchStations: %v", err)
	}
	if len(got) != 1 || got[0].ID != 23002 {
		t.Fatalf("got %v, want the Tuusula station", got)
	}
}

func TestCatalogFallsBackToCache(t *testing.T) {
	var fail atomic.Bool
	srv := testServer(t, &fail)

	cache, err := OpenSnapshotCache(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("OpenSnapshotCache: %v", err)
	}
	defer cache.Close()

	c := NewClient(Config{BaseURL: srv.URL, Cache: cache})

	// First fetch succeeds and populates the cache.
	if _, err := c.Catalog(context.Background()); err != nil {
		t.Fatalf("Catalog (warm-up): %v", err)
	}

	fail.Store(true)
	records, err := c.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog with upstream down: %v, want cached snapshot", err)
	}
	if len(records) != 2 || records[0].ID != "00003_250_00000_1_0" {
		t.Errorf("cached records = %+v", records)
	}
}

func TestCatalogErrorWithoutCache(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := testServer(t, &fail)

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Catalog(context.Background()); err == nil {
		t.Error("expected error when upstream is down and no cache is configured")
	}
}
