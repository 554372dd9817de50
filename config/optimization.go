package config

import (
	"fmt"

	"github.com/hydrolox-0/ff-sih-backup/core/induction"
)

// DefaultServiceDemand is the number of revenue-service trainsets requested
// when a caller does not specify one.
const DefaultServiceDemand = 20

// OptimizationConfig holds the scorer weights and normalisation constants.
type OptimizationConfig struct {
	Weights              induction.Weights `json:"weights"`
	FleetAverageMileage  float64           `json:"fleet_average_mileage"`
	TotalFleetSize       int               `json:"total_fleet_size"`
	DefaultServiceDemand int               `json:"default_service_demand"`
}

// SetDefaults applies the standard weight table and constants.
func (c *OptimizationConfig) SetDefaults() {
	ic := c.Induction()
	ic.SetDefaults()
	c.Weights = ic.Weights
	c.FleetAverageMileage = ic.FleetAverageMileage
	c.TotalFleetSize = ic.TotalFleetSize
	if c.DefaultServiceDemand == 0 {
		c.DefaultServiceDemand = DefaultServiceDemand
	}
}

// Validate rejects malformed weight tables and a negative demand.
func (c OptimizationConfig) Validate() error {
	if c.DefaultServiceDemand < 0 {
		return fmt.Errorf("default_service_demand must be non-negative")
	}
	return c.Induction().Validate()
}

// Induction returns the scorer configuration.
func (c OptimizationConfig) Induction() induction.Config {
	return induction.Config{
		Weights:             c.Weights,
		FleetAverageMileage: c.FleetAverageMileage,
		TotalFleetSize:      c.TotalFleetSize,
	}
}
