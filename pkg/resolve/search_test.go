package resolve

import "testing"

func testStations() []Station {
	return []Station{
		{ID: 23001, Name: "vt4_Kemintie", Names: map[string]string{"fi": "Tie 4 Kemintie"}},
		{ID: 23002, Name: "vt4_Tuusula", Names: map[string]string{"fi": "Tie 4 Tuusula"}},
		{ID: 24801, Name: "st101_Itäväylä", Names: map[string]string{"fi": "Seututie 101 Itäväylä"}},
	}
}

func TestSearchStationsExactID(t *testing.T) {
	got := SearchStations("23002", testStations(), 12, nil)
	if len(got) == 0 || got[0].ID != 23002 {
		t.Fatalf("got %v, want exact id hit first", got)
	}
}

func TestSearchStationsExactName(t *testing.T) {
	got := SearchStations("Tie 4 Tuusula", testStations(), 12, nil)
	if len(got) == 0 || got[0].ID != 23002 {
		t.Fatalf("got %v, want exact name hit first", got)
	}
}

func TestSearchStationsOverlapOrdering(t *testing.T) {
	// "Tie 4" overlaps both vt4 stations equally; ascending id decides.
	got := SearchStations("Tie 4", testStations(), 12, nil)
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].ID != 23001 || got[1].ID != 23002 {
		t.Errorf("order = [%d %d], want [23001 23002]", got[0].ID, got[1].ID)
	}
}

func TestSearchStationsUnderscoreInsensitive(t *testing.T) {
	got := SearchStations("vt4 Kemintie", testStations(), 12, nil)
	if len(got) == 0 || got[0].ID != 23001 {
		t.Fatalf("got %v, want raw underscore name matched", got)
	}
}

func TestSearchStationsCapAndMiss(t *testing.T) {
	if got := SearchStations("Tie 4", testStations(), 1, nil); len(got) != 1 {
		t.Errorf("cap ignored: %d results", len(got))
	}
	if got := SearchStations("nothing here", testStations(), 12, nil); got != nil {
		t.Errorf("miss: got %v, want nil", got)
	}
}

func TestStationDisplayName(t *testing.T) {
	tests := []struct {
		station Station
		want    string
	}{
		{Station{ID: 1, Names: map[string]string{"fi": "Tie 4 Kemintie"}}, "Tie 4 Kemintie"},
		{Station{ID: 2, Name: "vt4_Kemintie"}, "vt4 Kemintie"},
		{Station{ID: 3}, "3"},
	}
	for _, tt := range tests {
		if got := tt.station.DisplayName(); got != tt.want {
			t.Errorf("DisplayName = %q, want %q", got, tt.want)
		}
	}
}
