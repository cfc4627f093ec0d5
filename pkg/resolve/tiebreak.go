package resolve

// Secondary scoring weights. The baseline condition counts more than the
// reference road condition: a section that mostly reports normal driving
// conditions is the one users mean when a description is duplicated.
const (
	baselineCondition  = "NORMAL_CONDITION"
	referenceCondition = "DRY"
	baselineWeight     = 2
	referenceWeight    = 1
)

// breakTie picks one of several equally scored candidates using the
// secondary condition feed. When the feed is empty or all secondary scores
// are equal, the first candidate of the incoming (score, id-ordered)
// sequence wins, so repeated calls stay deterministic.
func breakTie(tied []Candidate, obs Observations) Candidate {
	best := tied[0]
	bestScore := secondaryScore(obs[best.Record.ID])
	for _, c := range tied[1:] {
		if s := secondaryScore(obs[c.Record.ID]); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}

// secondaryScore sums condition weights across all observations for one
// candidate.
func secondaryScore(series []Observation) int {
	score := 0
	for _, o := range series {
		if o.OverallCondition == baselineCondition {
			score += baselineWeight
		}
		if o.RoadCondition == referenceCondition {
			score += referenceWeight
		}
	}
	return score
}
