package scenario

import (
	"sort"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Change records a trainset whose recommended status differs between runs.
type Change struct {
	TrainsetID     string       `json:"trainset_id"`
	BaselineStatus model.Status `json:"baseline_status"`
	ScenarioStatus model.Status `json:"scenario_status"`
}

// Comparison summarises two allocation runs over the same fleet.
type Comparison struct {
	BaselineCounts map[model.Status]int `json:"baseline_counts"`
	ScenarioCounts map[model.Status]int `json:"scenario_counts"`
	Differences    map[model.Status]int `json:"differences"`
	Changed        []Change             `json:"changed_trainsets"`
	TotalChanges   int                  `json:"total_changes"`
	Unchanged      int                  `json:"unchanged"`
}

// Compare keys both runs by trainset id, so decision order does not matter.
// A trainset present in only one run is reported with an empty status on the
// other side.
func Compare(baseline, scenario []model.InductionDecision) Comparison {
	c := Comparison{
		BaselineCounts: model.CountByStatus(baseline),
		ScenarioCounts: model.CountByStatus(scenario),
		Differences:    make(map[model.Status]int),
		Changed:        []Change{},
	}
	for st, n := range c.ScenarioCounts {
		c.Differences[st] = n - c.BaselineCounts[st]
	}
	for st, n := range c.BaselineCounts {
		if _, ok := c.Differences[st]; !ok {
			c.Differences[st] = -n
		}
	}

	before := make(map[string]model.Status, len(baseline))
	for _, d := range baseline {
		before[d.TrainsetID] = d.RecommendedStatus
	}
	after := make(map[string]model.Status, len(scenario))
	for _, d := range scenario {
		after[d.TrainsetID] = d.RecommendedStatus
	}

	for id, b := range before {
		s, ok := after[id]
		if ok && s == b {
			c.Unchanged++
			continue
		}
		c.Changed = append(c.Changed, Change{TrainsetID: id, BaselineStatus: b, ScenarioStatus: s})
	}
	for id, s := range after {
		if _, ok := before[id]; !ok {
			c.Changed = append(c.Changed, Change{TrainsetID: id, ScenarioStatus: s})
		}
	}
	sort.Slice(c.Changed, func(i, j int) bool { return c.Changed[i].TrainsetID < c.Changed[j].TrainsetID })
	c.TotalChanges = len(c.Changed)
	return c
}
