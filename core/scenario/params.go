package scenario

import "github.com/hydrolox-0/ff-sih-backup/core/model"

const (
	DefaultMaintenanceHours    = 8.0
	DefaultFailureType         = "HVAC"
	DefaultRepairHours         = 12.0
	DefaultImpactDurationHours = 24.0
)

// Params carries the inputs of every scenario kind. Each kind reads only the
// fields it needs.
type Params struct {
	// certificate_expiry, emergency_maintenance
	TrainsetIDs      []string              `json:"trainset_ids,omitempty" yaml:"trainset_ids,omitempty"`
	CertificateType  model.CertificateType `json:"certificate_type,omitempty" yaml:"certificate_type,omitempty"`
	MaintenanceHours float64               `json:"maintenance_hours,omitempty" yaml:"maintenance_hours,omitempty"`

	// equipment_failure
	TrainsetID  string  `json:"trainset_id,omitempty" yaml:"trainset_id,omitempty"`
	FailureType string  `json:"failure_type,omitempty" yaml:"failure_type,omitempty"`
	RepairHours float64 `json:"repair_hours,omitempty" yaml:"repair_hours,omitempty"`

	// weather_impact
	AffectedBays        []int   `json:"affected_bays,omitempty" yaml:"affected_bays,omitempty"`
	ImpactDurationHours float64 `json:"impact_duration_hours,omitempty" yaml:"impact_duration_hours,omitempty"`

	// ServiceDemand, when set, replaces the demand of the scenario run. It is
	// the only input of increased_demand.
	ServiceDemand *int `json:"service_demand,omitempty" yaml:"service_demand,omitempty"`

	// custom
	Modifications []Modification `json:"modifications,omitempty" yaml:"modifications,omitempty"`
}

func (p Params) withDefaults() Params {
	if p.CertificateType == "" {
		p.CertificateType = model.CertTelecom
	}
	if p.MaintenanceHours == 0 {
		p.MaintenanceHours = DefaultMaintenanceHours
	}
	if p.FailureType == "" {
		p.FailureType = DefaultFailureType
	}
	if p.RepairHours == 0 {
		p.RepairHours = DefaultRepairHours
	}
	if p.ImpactDurationHours == 0 {
		p.ImpactDurationHours = DefaultImpactDurationHours
	}
	return p
}

func (p Params) idSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.TrainsetIDs))
	for _, id := range p.TrainsetIDs {
		set[id] = struct{}{}
	}
	return set
}
