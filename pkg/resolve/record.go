package resolve

import (
	"encoding/json"
	"time"
)

// Record is one entity from the remote catalog. ID is the stable join key;
// Description is the primary match target. Road numbers are optional because
// some catalog entries carry neither. Fields the resolver does not know
// about are kept verbatim in Extra and round-trip through JSON untouched.
type Record struct {
	ID                string
	Description       string
	RoadNumber        *int
	RoadSectionNumber *int
	Extra             map[string]any
}

// Observation is one timestamped entry from the secondary condition feed.
type Observation struct {
	Time             time.Time
	OverallCondition string
	RoadCondition    string
}

// Observations maps a canonical identifier to its condition time series.
type Observations map[string][]Observation

// MarshalJSON flattens known fields and Extra into one object.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		m[k] = v
	}
	m["id"] = r.ID
	m["description"] = r.Description
	if r.RoadNumber != nil {
		m["roadNumber"] = *r.RoadNumber
	}
	if r.RoadSectionNumber != nil {
		m["roadSectionNumber"] = *r.RoadSectionNumber
	}
	return json.Marshal(m)
}

// UnmarshalJSON pulls the known fields out of the object and keeps
// everything else in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = RecordFromProperties(m)
	return nil
}

// RecordFromProperties builds a Record from a loosely typed property map,
// as returned inside the catalog's GeoJSON features.
func RecordFromProperties(props map[string]any) Record {
	r := Record{Extra: make(map[string]any)}
	for k, v := range props {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				r.ID = s
			}
		case "description":
			if s, ok := v.(string); ok {
				r.Description = s
			}
		case "roadNumber":
			if n, ok := asInt(v); ok {
				r.RoadNumber = &n
			}
		case "roadSectionNumber":
			if n, ok := asInt(v); ok {
				r.RoadSectionNumber = &n
			}
		default:
			r.Extra[k] = v
		}
	}
	if len(r.Extra) == 0 {
		r.Extra = nil
	}
	return r
}

// asInt accepts the numeric shapes JSON decoding can produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// IntPtr is a small helper for building records in callers and tests.
func IntPtr(n int) *int {
	return &n
}
