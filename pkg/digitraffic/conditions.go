package digitraffic

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// conditionLabels maps Digitraffic condition codes to human labels.
var conditionLabels = map[string]map[string]string{
	"DRY":                      {"fi": "Kuiva", "en": "Dry"},
	"WET":                      {"fi": "Märkä", "en": "Wet"},
	"MOIST":                    {"fi": "Kostea", "en": "Damp"},
	"FROST":                    {"fi": "Kuuraa", "en": "Frost"},
	"ICE":                      {"fi": "Jäätä", "en": "Ice"},
	"PARTLY_ICY":               {"fi": "Osittain jäätä", "en": "Partly icy"},
	"SLUSH":                    {"fi": "Loskaa", "en": "Slush"},
	"SNOW":                     {"fi": "Lunta", "en": "Snow"},
	"NORMAL_CONDITION":         {"fi": "Hyvä ajokeli", "en": "Good driving conditions"},
	"POOR_CONDITION":           {"fi": "Huono ajokeli", "en": "Poor driving conditions"},
	"EXTREMELY_POOR_CONDITION": {"fi": "Erittäin huono ajokeli", "en": "Extremely poor driving conditions"},
}

// localTime is the timezone forecast times are rendered in. The feed uses
// UTC; road users read EET.
var localTime = time.FixedZone("EET", 2*60*60)

// ConditionLabel returns the label for a condition code, falling back to the
// raw code for values the map does not know.
func ConditionLabel(code, lang string) string {
	if labels, ok := conditionLabels[code]; ok {
		if l, ok := labels[lang]; ok {
			return l
		}
		if l, ok := labels["fi"]; ok {
			return l
		}
	}
	return code
}

// FormatObservation renders one observation as "overall, road" with the
// specific road condition lowercased, e.g. "Hyvä ajokeli, kuiva".
func FormatObservation(o resolve.Observation, lang string) string {
	overall := ""
	if o.OverallCondition != "" {
		overall = ConditionLabel(o.OverallCondition, lang)
	}
	road := ""
	if o.RoadCondition != "" {
		road = lowerFirst(ConditionLabel(o.RoadCondition, lang))
	}
	switch {
	case overall != "" && road != "":
		return overall + ", " + road
	case overall != "":
		return overall
	case road != "":
		return road
	}
	if lang == "en" {
		return "No data"
	}
	return "Ei tietoa"
}

// FormatForecast renders a forecast series as one "HH:MM condition" line
// per observation.
func FormatForecast(series []resolve.Observation, lang string) string {
	if len(series) == 0 {
		if lang == "en" {
			return "No forecast data"
		}
		return "Ei ennustetta"
	}
	lines := make([]string, 0, len(series))
	for _, o := range series {
		lines = append(lines, o.Time.In(localTime).Format("15:04")+" "+FormatObservation(o, lang))
	}
	return strings.Join(lines, "\n")
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
