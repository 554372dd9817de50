package prediction

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultServiceHours       = 14.0
	DefaultMaintenanceHours   = 8.0
	DefaultFailureProbability = 0.05

	minMaintenanceHours = 1.0
)

// Forecaster predicts operating figures for a trainset.
type Forecaster interface {
	PredictServiceHours(f Features) float64
	PredictMaintenanceDuration(f Features) float64
	PredictFailureProbability(f Features) float64
}

// Forecast bundles the three predictions.
type Forecast struct {
	ServiceHours       float64 `json:"predicted_service_hours"`
	MaintenanceHours   float64 `json:"predicted_maintenance_hours"`
	FailureProbability float64 `json:"failure_probability"`
}

// Predict runs every prediction of fc on f.
func Predict(fc Forecaster, f Features) Forecast {
	return Forecast{
		ServiceHours:       fc.PredictServiceHours(f),
		MaintenanceHours:   fc.PredictMaintenanceDuration(f),
		FailureProbability: fc.PredictFailureProbability(f),
	}
}

// DefaultForecaster returns fixed fleet-wide figures.
type DefaultForecaster struct{}

func (DefaultForecaster) PredictServiceHours(Features) float64 { return DefaultServiceHours }

func (DefaultForecaster) PredictMaintenanceDuration(Features) float64 {
	return math.Max(minMaintenanceHours, DefaultMaintenanceHours)
}

func (DefaultForecaster) PredictFailureProbability(Features) float64 {
	return clamp01(DefaultFailureProbability)
}

// StaticForecaster returns configured per-trainset values and falls back to
// DefaultForecaster.
type StaticForecaster struct {
	Forecasts map[string]Forecast
}

func (s StaticForecaster) lookup(id string) (Forecast, bool) {
	if s.Forecasts == nil {
		return Forecast{}, false
	}
	f, ok := s.Forecasts[id]
	return f, ok
}

func (s StaticForecaster) PredictServiceHours(f Features) float64 {
	if v, ok := s.lookup(f.TrainsetID); ok {
		return math.Max(0, v.ServiceHours)
	}
	return DefaultForecaster{}.PredictServiceHours(f)
}

func (s StaticForecaster) PredictMaintenanceDuration(f Features) float64 {
	if v, ok := s.lookup(f.TrainsetID); ok {
		return math.Max(minMaintenanceHours, v.MaintenanceHours)
	}
	return DefaultForecaster{}.PredictMaintenanceDuration(f)
}

func (s StaticForecaster) PredictFailureProbability(f Features) float64 {
	if v, ok := s.lookup(f.TrainsetID); ok {
		return clamp01(v.FailureProbability)
	}
	return DefaultForecaster{}.PredictFailureProbability(f)
}

// Outcome is what actually happened after a prediction.
type Outcome struct {
	ServiceHours     float64 `json:"service_hours"`
	MaintenanceHours float64 `json:"maintenance_hours"`
	Failed           bool    `json:"failed"`
}

// LearningForecaster refines predictions from recorded outcomes. Service and
// maintenance hours are fitted by least squares against days since
// maintenance; failure probability is the observed failure rate. Until
// MinSamples outcomes are recorded it behaves like DefaultForecaster.
type LearningForecaster struct {
	MinSamples int

	mu       sync.RWMutex
	days     []float64
	service  []float64
	maint    []float64
	failures int
}

// NewLearningForecaster creates a forecaster needing minSamples outcomes.
func NewLearningForecaster(minSamples int) *LearningForecaster {
	if minSamples < 2 {
		minSamples = 2
	}
	return &LearningForecaster{MinSamples: minSamples}
}

// Record stores an observed outcome for the given features.
func (l *LearningForecaster) Record(f Features, o Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.days = append(l.days, f.DaysSinceMaintenance)
	l.service = append(l.service, o.ServiceHours)
	l.maint = append(l.maint, o.MaintenanceHours)
	if o.Failed {
		l.failures++
	}
}

// Samples returns the number of recorded outcomes.
func (l *LearningForecaster) Samples() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.days)
}

func (l *LearningForecaster) fit(ys []float64, x float64) (float64, bool) {
	if len(l.days) < l.MinSamples || stat.Variance(l.days, nil) == 0 {
		return 0, false
	}
	alpha, beta := stat.LinearRegression(l.days, ys, nil, false)
	return alpha + beta*x, true
}

func (l *LearningForecaster) PredictServiceHours(f Features) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.fit(l.service, f.DaysSinceMaintenance); ok {
		return math.Max(0, v)
	}
	return DefaultServiceHours
}

func (l *LearningForecaster) PredictMaintenanceDuration(f Features) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.fit(l.maint, f.DaysSinceMaintenance); ok {
		return math.Max(minMaintenanceHours, v)
	}
	return DefaultMaintenanceHours
}

func (l *LearningForecaster) PredictFailureProbability(Features) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.days) < l.MinSamples {
		return DefaultFailureProbability
	}
	return clamp01(float64(l.failures) / float64(len(l.days)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
