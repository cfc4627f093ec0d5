package resolve

import (
	"sort"
	"strconv"
	"strings"
)

// exactIDScore outranks even exact-name matches in station search: typing a
// station's numeric id is the most precise input a user can give.
const exactIDScore = 200

// Station is one measurement station (weather or traffic metering) from the
// station metadata feed. Names carries the per-language labels the feed
// provides ("fi", "sv", "en").
type Station struct {
	ID    int               `json:"id"`
	Name  string            `json:"name"`
	Names map[string]string `json:"names,omitempty"`
}

// DisplayName returns the best human label for a station. Raw feed names
// use underscores as separators.
func (s Station) DisplayName() string {
	for _, lang := range []string{"fi", "en", "sv"} {
		if n := s.Names[lang]; n != "" {
			return n
		}
	}
	if s.Name != "" {
		return strings.ReplaceAll(s.Name, "_", " ")
	}
	return strconv.Itoa(s.ID)
}

type scoredStation struct {
	score   int
	station Station
}

// SearchStations scores stations against a query: exact id 200, exact
// normalized name 100, otherwise token overlap across all name variants.
// Results are sorted by descending score then ascending id, capped at max.
func SearchStations(query string, stations []Station, max int, normalize Normalizer) []Station {
	if max <= 0 {
		max = DefaultMaxCandidates
	}
	if normalize == nil {
		normalize = NormalizeLowercaseUTF8
	}
	qnorm := normalize(query)
	if qnorm == "" {
		return nil
	}
	qtokens := Tokens(qnorm)
	qraw := strings.TrimSpace(query)

	var out []scoredStation
	for _, st := range stations {
		if score := stationScore(st, qraw, qnorm, qtokens, normalize); score > 0 {
			out = append(out, scoredStation{score, st})
		}
	}
	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].station.ID < out[j].station.ID
	})
	if len(out) > max {
		out = out[:max]
	}
	result := make([]Station, len(out))
	for i, s := range out {
		result[i] = s.station
	}
	return result
}

func stationScore(st Station, qraw, qnorm string, qtokens map[string]struct{}, normalize Normalizer) int {
	if qraw == strconv.Itoa(st.ID) {
		return exactIDScore
	}

	names := make([]string, 0, len(st.Names)+1)
	if st.Name != "" {
		names = append(names, st.Name)
	}
	for _, n := range st.Names {
		names = append(names, n)
	}

	best := 0
	for _, n := range names {
		nnorm := normalize(n)
		if nnorm == qnorm {
			return exactMatchScore
		}
		if s := overlap(qtokens, Tokens(nnorm)); s > best {
			best = s
		}
	}
	return best
}
