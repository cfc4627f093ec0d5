package digitraffic

import (
	"testing"
	"time"

	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

func TestConditionLabel(t *testing.T) {
	tests := []struct {
		code, lang, want string
	}{
		{"DRY", "fi", "Kuiva"},
		{"DRY", "en", "Dry"},
		{"NORMAL_CONDITION", "fi", "Hyvä ajokeli"},
		{"DRY", "sv", "Kuiva"},                   // unknown language falls back to fi
		{"SOMETHING_NEW", "fi", "SOMETHING_NEW"}, // unknown code passes through
	}
	for _, tt := range tests {
		if got := ConditionLabel(tt.code, tt.lang); got != tt.want {
			t.Errorf("ConditionLabel(%q, %q) = %q, want %q", tt.code, tt.lang, got, tt.want)
		}
	}
}

func TestFormatObservation(t *testing.T) {
	tests := []struct {
		obs  resolve.Observation
		lang string
		want string
	}{
		{resolve.Observation{OverallCondition: "NORMAL_CONDITION", RoadCondition: "DRY"}, "fi", "Hyvä ajokeli, kuiva"},
		{resolve.Observation{OverallCondition: "POOR_CONDITION"}, "en", "Poor driving conditions"},
		{resolve.Observation{RoadCondition: "ICE"}, "fi", "jäätä"},
		{resolve.Observation{}, "fi", "Ei tietoa"},
		{resolve.Observation{}, "en", "No data"},
	}
	for _, tt := range tests {
		if got := FormatObservation(tt.obs, tt.lang); got != tt.want {
			t.Errorf("FormatObservation(%+v, %q) = %q, want %q", tt.obs, tt.lang, got, tt.want)
		}
	}
}

func TestFormatForecast(t *testing.T) {
	series := []resolve.Observation{
		{Time: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), OverallCondition: "NORMAL_CONDITION", RoadCondition: "DRY"},
		{Time: time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC), OverallCondition: "POOR_CONDITION", RoadCondition: "SNOW"},
	}
	// Feed times are UTC; rendering shifts to EET (+2).
	want := "14:00 Hyvä ajokeli, kuiva\n16:00 Huono ajokeli, lunta"
	if got := FormatForecast(series, "fi"); got != want {
		t.Errorf("FormatForecast = %q, want %q", got, want)
	}
	if got := FormatForecast(nil, "en"); got != "No forecast data" {
		t.Errorf("empty forecast = %q", got)
	}
}
