package induction

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidWeights is returned when a weight table is negative or does not
// sum to one.
var ErrInvalidWeights = errors.New("invalid allocation weights")

// WeightTolerance bounds how far the weight sum may drift from 1.0.
const WeightTolerance = 1e-6

const (
	DefaultFleetAverageMileage = 50000.0
	DefaultTotalFleetSize      = 25
)

// Weights are the coefficients of the five composite sub-scores.
type Weights struct {
	ServiceReadiness   float64 `json:"service_readiness"`
	MileageBalance     float64 `json:"mileage_balance"`
	BrandingPriority   float64 `json:"branding_priority"`
	MaintenanceUrgency float64 `json:"maintenance_urgency"`
	StablingEfficiency float64 `json:"stabling_efficiency"`
}

// DefaultWeights returns the standard weight table.
func DefaultWeights() Weights {
	return Weights{
		ServiceReadiness:   0.30,
		MileageBalance:     0.20,
		BrandingPriority:   0.20,
		MaintenanceUrgency: 0.15,
		StablingEfficiency: 0.15,
	}
}

func (w Weights) values() []float64 {
	return []float64{w.ServiceReadiness, w.MileageBalance, w.BrandingPriority, w.MaintenanceUrgency, w.StablingEfficiency}
}

// IsZero reports whether no weight has been set.
func (w Weights) IsZero() bool { return w == Weights{} }

// Validate rejects negative weights and tables not summing to 1.0.
func (w Weights) Validate() error {
	vals := w.values()
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative weight %v", ErrInvalidWeights, v)
		}
	}
	if sum := floats.Sum(vals); math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("%w: weights sum to %.6f", ErrInvalidWeights, sum)
	}
	return nil
}

// Config holds the read-only scorer inputs supplied by configuration.
type Config struct {
	Weights             Weights `json:"weights"`
	FleetAverageMileage float64 `json:"fleet_average_mileage"`
	TotalFleetSize      int     `json:"total_fleet_size"`
}

// DefaultConfig returns the standard scorer configuration.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		FleetAverageMileage: DefaultFleetAverageMileage,
		TotalFleetSize:      DefaultTotalFleetSize,
	}
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Weights.IsZero() {
		c.Weights = DefaultWeights()
	}
	if c.FleetAverageMileage == 0 {
		c.FleetAverageMileage = DefaultFleetAverageMileage
	}
	if c.TotalFleetSize == 0 {
		c.TotalFleetSize = DefaultTotalFleetSize
	}
}

// Validate checks the weights and the normalisation constants.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.FleetAverageMileage <= 0 {
		return fmt.Errorf("fleet average mileage must be positive")
	}
	if c.TotalFleetSize <= 0 {
		return fmt.Errorf("total fleet size must be positive")
	}
	return nil
}
