package resolve

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxCandidates bounds candidate lists when the caller passes no limit.
const DefaultMaxCandidates = 12

// exactMatchScore is assigned to stage 1-3 hits so that an exact match always
// outranks any token-overlap score.
const exactMatchScore = 100

// idShape is the catalog's own identifier format, e.g. "00003_250_00000_1_0".
var idShape = regexp.MustCompile(`^[0-9]{5}_\d+`)

// roadNumberRe pulls the first integer out of the left segment of a
// "road: location" query, tolerating a road-type word before it
// ("Tie 3", "Valtatie 3", "VT3").
var roadNumberRe = regexp.MustCompile(`[0-9]{1,5}`)

// roadMarkerRe matches a road number followed, after at most a few
// non-digit characters, by a decimal kilometre marker ("Tie 3 3.250").
var roadMarkerRe = regexp.MustCompile(`(\d{1,3})\D{1,4}(\d+\.\d+)`)

// IsCanonicalID reports whether the input already looks like a catalog
// identifier, in which case resolution is skipped entirely.
func IsCanonicalID(s string) bool {
	return idShape.MatchString(strings.TrimSpace(s))
}

// Candidate pairs a catalog record with its match score.
type Candidate struct {
	Score  int
	Record Record
}

// ResolveCandidates runs the matching cascade over the catalog and returns
// the most relevant records first. A stage that yields results is final;
// weaker stages are not consulted. A nil or empty catalog yields nil.
func ResolveCandidates(query string, catalog []Record, max int, normalize Normalizer) []Record {
	cands := ScoredCandidates(query, catalog, max, normalize)
	if len(cands) == 0 {
		return nil
	}
	records := make([]Record, len(cands))
	for i, c := range cands {
		records[i] = c.Record
	}
	return records
}

// ScoredCandidates is the scored variant of the cascade used by the
// single-identifier resolution path. Stages 1-3 score exactMatchScore;
// stage 4 scores are token intersection counts. The result is sorted by
// descending score, then ascending id, and contains no duplicate ids.
func ScoredCandidates(query string, catalog []Record, max int, normalize Normalizer) []Candidate {
	if max <= 0 {
		max = DefaultMaxCandidates
	}
	if normalize == nil {
		normalize = NormalizeLowercaseUTF8
	}
	qnorm := normalize(query)
	if qnorm == "" || len(catalog) == 0 {
		return nil
	}

	for _, stage := range []func(string, string, []Record, Normalizer) []Candidate{
		exactDescriptionStage,
		roadLocationStage,
		roadMarkerStage,
		tokenOverlapStage,
	} {
		if cands := stage(query, qnorm, catalog, normalize); len(cands) > 0 {
			return capCandidates(cands, max)
		}
	}
	return nil
}

// exactDescriptionStage returns every record whose normalized description
// equals the normalized query. Duplicated descriptions are surfaced, not
// hidden.
func exactDescriptionStage(_ string, qnorm string, catalog []Record, normalize Normalizer) []Candidate {
	var out []Candidate
	for _, rec := range catalog {
		if normalize(rec.Description) == qnorm {
			out = append(out, Candidate{Score: exactMatchScore, Record: rec})
		}
	}
	return out
}

// roadLocationStage handles structured "road: location" input: the left
// segment must carry a road number, the right segment must be an exact
// description.
func roadLocationStage(query, _ string, catalog []Record, normalize Normalizer) []Candidate {
	left, right, found := strings.Cut(query, ":")
	if !found {
		return nil
	}
	numStr := roadNumberRe.FindString(left)
	if numStr == "" {
		return nil
	}
	road, err := strconv.Atoi(numStr)
	if err != nil {
		return nil
	}
	rnorm := normalize(right)
	if rnorm == "" {
		return nil
	}
	var out []Candidate
	for _, rec := range catalog {
		if rec.RoadNumber == nil || *rec.RoadNumber != road {
			continue
		}
		if normalize(rec.Description) != rnorm {
			continue
		}
		out = append(out, Candidate{Score: exactMatchScore, Record: rec})
	}
	return out
}

// roadMarkerStage extracts a road number and a decimal kilometre marker
// anywhere in the query. The catalog encodes sub-kilometre position as the
// fractional kilometres scaled by 1000; that scaling is a best-effort
// heuristic, so the token-overlap stage below remains the safety net.
func roadMarkerStage(query, _ string, catalog []Record, _ Normalizer) []Candidate {
	m := roadMarkerRe.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	road, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	km, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil
	}
	section := int(math.Round((km - math.Trunc(km)) * 1000))
	var out []Candidate
	for _, rec := range catalog {
		if rec.RoadNumber == nil || *rec.RoadNumber != road {
			continue
		}
		if rec.RoadSectionNumber == nil || *rec.RoadSectionNumber != section {
			continue
		}
		out = append(out, Candidate{Score: exactMatchScore, Record: rec})
	}
	return out
}

// tokenOverlapStage is the fallback: records sharing at least one
// normalized token with the query, scored by intersection size.
func tokenOverlapStage(_ string, qnorm string, catalog []Record, normalize Normalizer) []Candidate {
	qtokens := Tokens(qnorm)
	if len(qtokens) == 0 {
		return nil
	}
	var out []Candidate
	for _, rec := range catalog {
		score := overlap(qtokens, Tokens(normalize(rec.Description)))
		if score > 0 {
			out = append(out, Candidate{Score: score, Record: rec})
		}
	}
	return out
}

// capCandidates sorts by descending score then ascending id, drops duplicate
// ids, and truncates to max. The id tiebreak keeps repeated calls stable.
func capCandidates(cands []Candidate, max int) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Record.ID < cands[j].Record.ID
	})
	seen := make(map[string]struct{}, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if _, dup := seen[c.Record.ID]; dup {
			continue
		}
		seen[c.Record.ID] = struct{}{}
		out = append(out, c)
		if len(out) == max {
			break
		}
	}
	return out
}
