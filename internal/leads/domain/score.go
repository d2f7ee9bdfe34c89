package domain

// Scoring weights per status and stage.
var statusScores = map[string]int{
	StatusWon:         25,
	StatusNegotiation: 15,
	StatusQualified:   10,
	StatusProspect:    5,
	StatusLost:        -10,
}

var stageScores = map[string]int{
	StageClosedWon:    25,
	StageContractSent: 15,
	StageProposalSent: 10,
	StageDiscovery:    5,
	StageClosedLost:   -10,
	StageNegotiation:  20,
}

// HighPriorityThreshold is the score at or above which a lead is flagged
// high priority. MediumPriorityThreshold is the floor of the medium band.
const (
	HighPriorityThreshold   = 80
	MediumPriorityThreshold = 50
)

// Priority bands derived from the lead score.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ScoreWeighted computes a lead score from deal size, status, pipeline stage
// and CRM activity. base is the engagement baseline (20..50 in the seeder);
// callers that want a reproducible score pass a fixed base. Closed deals
// always score 0. The result is clamped to 0..100.
func ScoreWeighted(base int, lastDealSizeUSD int64, status, stage string, crmActive bool) int {
	if IsClosed(status) {
		return 0
	}

	score := base

	dealScore := int(lastDealSizeUSD / 166666)
	if dealScore > 30 {
		dealScore = 30
	}
	score += dealScore

	score += statusScores[status]
	score += stageScores[stage]

	if crmActive {
		score += 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DefaultScoreBase is the engagement baseline used when scores are
// recomputed on edits, where no sampled baseline is available.
const DefaultScoreBase = 35

// HighPriority reports whether the score crosses the high-priority threshold.
func HighPriority(score int) bool {
	return score >= HighPriorityThreshold
}

// PriorityBand maps a lead score to its display band.
func PriorityBand(score int) string {
	switch {
	case score >= HighPriorityThreshold:
		return PriorityHigh
	case score >= MediumPriorityThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
