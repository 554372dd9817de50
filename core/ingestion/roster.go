package ingestion

import (
	"fmt"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Roster describes the fleet the depot operates. Every refresh seeds one
// trainset per roster entry before merging source data.
type Roster struct {
	Size        int     `json:"total_trainsets"`
	IDPrefix    string  `json:"id_prefix"`
	BaseMileage float64 `json:"base_mileage"`
	MileageStep float64 `json:"mileage_step"`
}

// DefaultRoster returns the 25-trainset depot roster.
func DefaultRoster() Roster {
	return Roster{Size: 25, IDPrefix: "TS-", BaseMileage: 45000, MileageStep: 1000}
}

// SetDefaults fills unset fields.
func (r *Roster) SetDefaults() {
	d := DefaultRoster()
	if r.Size == 0 {
		r.Size = d.Size
	}
	if r.IDPrefix == "" {
		r.IDPrefix = d.IDPrefix
	}
	if r.BaseMileage == 0 {
		r.BaseMileage = d.BaseMileage
	}
	if r.MileageStep == 0 {
		r.MileageStep = d.MileageStep
	}
}

// Validate checks the roster is usable.
func (r Roster) Validate() error {
	if r.Size <= 0 {
		return fmt.Errorf("total_trainsets must be positive")
	}
	if r.BaseMileage < 0 || r.MileageStep < 0 {
		return fmt.Errorf("mileage settings must be non-negative")
	}
	return nil
}

// ID returns the identifier of the i-th trainset, counting from 1.
func (r Roster) ID(i int) string {
	return fmt.Sprintf("%s%03d", r.IDPrefix, i)
}

// IDs lists every roster identifier in order.
func (r Roster) IDs() []string {
	ids := make([]string, r.Size)
	for i := range ids {
		ids[i] = r.ID(i + 1)
	}
	return ids
}

// Seed returns the base fleet: standby trainsets with empty collections.
func (r Roster) Seed() []model.Trainset {
	fleet := make([]model.Trainset, r.Size)
	for i := range fleet {
		fleet[i] = model.Trainset{
			ID:                  r.ID(i + 1),
			CarCount:            model.DefaultCarCount,
			CurrentStatus:       model.StatusStandby,
			CurrentMileage:      r.BaseMileage + float64(i+1)*r.MileageStep,
			FitnessCertificates: []model.FitnessCertificate{},
			JobCards:            []model.JobCard{},
		}
	}
	return fleet
}
