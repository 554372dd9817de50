package induction

import (
	"time"

	"github.com/google/uuid"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Plan is the outcome of one allocation run.
type Plan struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Decisions   []model.InductionDecision `json:"decisions"`
	Summary     Summary                   `json:"summary"`
}

// PlanAt allocates fleet at now and wraps the decisions with a fresh run id
// and their summary.
func (p *Policy) PlanAt(fleet []model.Trainset, demand int, now time.Time) Plan {
	decisions := p.AllocateAt(fleet, demand, now)
	return Plan{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		Decisions:   decisions,
		Summary:     Summarize(decisions, demand),
	}
}
