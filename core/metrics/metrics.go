package metrics

import (
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// AllocationEvent describes one allocation run.
type AllocationEvent struct {
	RunID     string
	Context   string
	Demand    int
	Decisions []model.InductionDecision
	Time      time.Time
}

// Counts returns the number of decisions per recommended status.
func (e AllocationEvent) Counts() map[model.Status]int {
	return model.CountByStatus(e.Decisions)
}

// Shortfall is the unmet part of the service demand.
func (e AllocationEvent) Shortfall() int {
	short := e.Demand - e.Counts()[model.StatusRevenueService]
	if short < 0 {
		return 0
	}
	return short
}

// MetricsSink records allocation runs for observability purposes.
type MetricsSink interface {
	RecordAllocation(ev AllocationEvent) error
}

// ScenarioEvent summarises a what-if run.
type ScenarioEvent struct {
	ScenarioID  string
	Kind        string
	Changes     int
	Differences map[model.Status]int
	Time        time.Time
}

// ScenarioRecorder records scenario runs.
type ScenarioRecorder interface {
	RecordScenario(ev ScenarioEvent) error
}

// RefreshEvent captures the outcome of a fleet snapshot refresh.
type RefreshEvent struct {
	Trainsets     int
	FailedSources []string
	Duration      time.Duration
	Time          time.Time
}

// RefreshRecorder records snapshot refreshes.
type RefreshRecorder interface {
	RecordRefresh(ev RefreshEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAllocation(AllocationEvent) error { return nil }
func (NopSink) RecordScenario(ScenarioEvent) error     { return nil }
func (NopSink) RecordRefresh(RefreshEvent) error       { return nil }
