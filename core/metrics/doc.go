// Package metrics defines the observability sinks fed by the induction
// engine. Every sink records allocation runs; sinks may additionally
// implement ScenarioRecorder and RefreshRecorder. NewMetricsSink builds sinks
// from configuration and returns a MultiSink when several are configured.
package metrics
