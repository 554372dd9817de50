package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// PromSink records allocation, scenario and refresh events in Prometheus metrics.
type PromSink struct {
	allocations     *prometheus.CounterVec
	shortfall       prometheus.Gauge
	scenarios       *prometheus.CounterVec
	scenarioChanges prometheus.Gauge
	sourceErrors    *prometheus.CounterVec
	fleet           prometheus.Gauge
	refreshLatency  prometheus.Histogram
}

// NewPromSink registers induction metrics on the default Prometheus registerer.
// The Prometheus endpoint is served separately by the HTTP API.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.allocations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "induction_allocations_total",
		Help: "Induction decisions produced, by recommended status",
	}, []string{"status", "context"})); err != nil {
		return nil, err
	}
	if s.shortfall, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "induction_service_shortfall",
		Help: "Unmet revenue-service demand of the last allocation run",
	})); err != nil {
		return nil, err
	}
	if s.scenarios, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "induction_scenarios_total",
		Help: "What-if scenario runs, by kind",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.scenarioChanges, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "induction_scenario_changes",
		Help: "Trainsets whose recommendation changed in the last scenario run",
	})); err != nil {
		return nil, err
	}
	if s.sourceErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_source_errors_total",
		Help: "Failed ingestion source fetches, by source",
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.fleet, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_trainsets_total",
		Help: "Trainsets in the last fleet snapshot",
	})); err != nil {
		return nil, err
	}
	if s.refreshLatency, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingestion_refresh_duration_seconds",
		Help:    "Time taken to build a fleet snapshot",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAllocation counts decisions per status and sets the shortfall gauge.
func (s *PromSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	ctx := ev.Context
	if ctx == "" {
		ctx = "optimize"
	}
	for _, st := range model.RecommendedStatuses {
		s.allocations.WithLabelValues(string(st), ctx).Add(float64(ev.Counts()[st]))
	}
	s.shortfall.Set(float64(ev.Shortfall()))
	return nil
}

// RecordScenario counts the run and exposes its change count.
func (s *PromSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	s.scenarios.WithLabelValues(ev.Kind).Inc()
	s.scenarioChanges.Set(float64(ev.Changes))
	return nil
}

// RecordRefresh updates the fleet gauge and per-source error counters.
func (s *PromSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	s.fleet.Set(float64(ev.Trainsets))
	for _, src := range ev.FailedSources {
		s.sourceErrors.WithLabelValues(src).Inc()
	}
	s.refreshLatency.Observe(ev.Duration.Seconds())
	return nil
}
