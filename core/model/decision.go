package model

// InductionDecision is the recommendation produced for one trainset by an
// allocation run. Decisions are not modified once emitted.
type InductionDecision struct {
	TrainsetID            string   `json:"trainset_id"`
	RecommendedStatus     Status   `json:"recommended_status"`
	PriorityScore         float64  `json:"priority_score"`
	Reasoning             []string `json:"reasoning"`
	Conflicts             []string `json:"conflicts"`
	EstimatedServiceHours float64  `json:"estimated_service_hours"`
}

// CountByStatus tallies decisions per recommended status. The three
// recommended statuses are always present in the result.
func CountByStatus(decisions []InductionDecision) map[Status]int {
	counts := make(map[Status]int, len(RecommendedStatuses))
	for _, s := range RecommendedStatuses {
		counts[s] = 0
	}
	for _, d := range decisions {
		counts[d.RecommendedStatus]++
	}
	return counts
}
