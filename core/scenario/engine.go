package scenario

import (
	"time"

	"github.com/google/uuid"

	"github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Result is the outcome of one what-if run.
type Result struct {
	ID             string                    `json:"scenario_id"`
	Kind           Kind                      `json:"scenario_type"`
	Params         Params                    `json:"parameters"`
	Demand         int                       `json:"service_demand"`
	ScenarioDemand int                       `json:"scenario_service_demand"`
	Baseline       []model.InductionDecision `json:"baseline"`
	Scenario       []model.InductionDecision `json:"scenario"`
	Comparison     Comparison                `json:"comparison"`
	Timestamp      time.Time                 `json:"timestamp"`
}

// Engine runs baseline and perturbed allocations side by side.
type Engine struct {
	policy *induction.Policy
}

// NewEngine returns an engine allocating both runs with policy.
func NewEngine(policy *induction.Policy) *Engine {
	return &Engine{policy: policy}
}

// Run allocates the fleet as given, then again after applying the kind's
// perturbation to a separate copy. The caller's fleet is never modified and
// both runs are evaluated at the same instant.
func (e *Engine) Run(fleet []model.Trainset, kind Kind, params Params, demand int) Result {
	return e.RunAt(fleet, kind, params, demand, e.policy.Now())
}

// RunAt is Run evaluated at a fixed instant. A ServiceDemand parameter
// replaces demand for the perturbed run only.
func (e *Engine) RunAt(fleet []model.Trainset, kind Kind, params Params, demand int, now time.Time) Result {
	baselineFleet := model.CloneFleet(fleet)
	baseline := e.policy.AllocateAt(baselineFleet, demand, now)

	perturbed := model.CloneFleet(fleet)
	Apply(perturbed, kind, params, now)

	scenarioDemand := demand
	if params.ServiceDemand != nil {
		scenarioDemand = *params.ServiceDemand
	}
	scenario := e.policy.AllocateAt(perturbed, scenarioDemand, now)

	return Result{
		ID:             uuid.NewString(),
		Kind:           kind,
		Params:         params,
		Demand:         demand,
		ScenarioDemand: scenarioDemand,
		Baseline:       baseline,
		Scenario:       scenario,
		Comparison:     Compare(baseline, scenario),
		Timestamp:      now,
	}
}
