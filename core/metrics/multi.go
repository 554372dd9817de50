package metrics

// MultiSink fans events out to several sinks. Optional recorders are only
// called on sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocation forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAllocation(ev AllocationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordScenario forwards scenario events.
func (m *MultiSink) RecordScenario(ev ScenarioEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ScenarioRecorder); ok {
			if err := rec.RecordScenario(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRefresh forwards refresh events.
func (m *MultiSink) RecordRefresh(ev RefreshEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RefreshRecorder); ok {
			if err := rec.RecordRefresh(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
