package induction

import (
	"fmt"
	"sort"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// NominalServiceHours is the service day length assumed for every trainset
// allocated to revenue service.
const NominalServiceHours = 16.0

// ReasonNotReady explains a forced maintenance allocation.
const ReasonNotReady = "not service-ready: certificate or job-card constraint"

// ReasonDemandMet explains a standby allocation.
const ReasonDemandMet = "service demand met"

// Policy ranks trainsets by composite score and fills the service quota
// greedily. Each call is independent; a Policy carries no mutable state.
type Policy struct {
	scorer Scorer
	now    func() time.Time
}

// Option customises a Policy.
type Option func(*Policy)

// WithClock sets the function returning the evaluation instant.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy returns a policy scoring with cfg.
func NewPolicy(cfg Config, opts ...Option) *Policy {
	p := &Policy{scorer: NewScorer(cfg), now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Scorer exposes the scorer used by the policy.
func (p *Policy) Scorer() Scorer { return p.scorer }

// Now returns the evaluation instant used by Allocate.
func (p *Policy) Now() time.Time { return p.now() }

type scored struct {
	t     model.Trainset
	score float64
	ready bool
}

// Allocate recommends a status for every trainset in fleet given the number
// of trainsets required in revenue service.
func (p *Policy) Allocate(fleet []model.Trainset, demand int) []model.InductionDecision {
	return p.AllocateAt(fleet, demand, p.now())
}

// AllocateAt is Allocate evaluated at a fixed instant. Decisions are returned
// in descending score order; equal scores keep their input order. Trainsets
// that are not service-ready always go to maintenance. Unmet demand is not an
// error: callers compare the service count against demand, see Summarize.
func (p *Policy) AllocateAt(fleet []model.Trainset, demand int, now time.Time) []model.InductionDecision {
	list := make([]scored, len(fleet))
	for i, t := range fleet {
		list[i] = scored{t: t, score: p.scorer.Score(t, now), ready: t.IsServiceReady(now)}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	decisions := make([]model.InductionDecision, 0, len(list))
	service := 0
	for _, c := range list {
		d := model.InductionDecision{
			TrainsetID:    c.t.ID,
			PriorityScore: c.score,
			Conflicts:     []string{},
		}
		switch {
		case !c.ready:
			d.RecommendedStatus = model.StatusMaintenance
			d.Reasoning = []string{ReasonNotReady}
		case service < demand:
			d.RecommendedStatus = model.StatusRevenueService
			d.EstimatedServiceHours = NominalServiceHours
			d.Reasoning = []string{
				fmt.Sprintf("allocated to service (demand: %d, current: %d)", demand, service),
				fmt.Sprintf("composite score: %.3f", c.score),
			}
			service++
		default:
			d.RecommendedStatus = model.StatusStandby
			d.Reasoning = []string{ReasonDemandMet}
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// Summary aggregates an allocation run.
type Summary struct {
	Demand      int `json:"demand"`
	Service     int `json:"service"`
	Standby     int `json:"standby"`
	Maintenance int `json:"maintenance"`
	Shortfall   int `json:"shortfall"`
}

// Summarize counts decisions per status and reports the unmet demand.
func Summarize(decisions []model.InductionDecision, demand int) Summary {
	counts := model.CountByStatus(decisions)
	s := Summary{
		Demand:      demand,
		Service:     counts[model.StatusRevenueService],
		Standby:     counts[model.StatusStandby],
		Maintenance: counts[model.StatusMaintenance],
	}
	if demand > s.Service {
		s.Shortfall = demand - s.Service
	}
	return s
}
