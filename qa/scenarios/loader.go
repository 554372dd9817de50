package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
)

// certificateValidity is how long fixture certificates stay valid.
const certificateValidity = 180 * 24 * time.Hour

// TrainsetDef is the compact fixture form of a trainset. Every trainset
// carries the three certificate types, valid unless listed in
// ExpiredCertificates.
type TrainsetDef struct {
	ID                   string                  `yaml:"id"`
	Status               model.Status            `yaml:"status,omitempty"`
	Mileage              float64                 `yaml:"mileage"`
	Bay                  *int                    `yaml:"bay,omitempty"`
	DaysSinceMaintenance *int                    `yaml:"days_since_maintenance,omitempty"`
	ExpiredCertificates  []model.CertificateType `yaml:"expired_certificates,omitempty"`
	JobCards             []model.JobCard         `yaml:"job_cards,omitempty"`
	Branding             *model.BrandingContract `yaml:"branding,omitempty"`
}

// ToModel expands the definition relative to now.
func (d TrainsetDef) ToModel(now time.Time) model.Trainset {
	status := d.Status
	if status == "" {
		status = model.StatusStandby
	}
	t := model.Trainset{
		ID:               d.ID,
		CarCount:         model.DefaultCarCount,
		CurrentStatus:    status,
		CurrentMileage:   d.Mileage,
		StablingBay:      d.Bay,
		BrandingContract: d.Branding,
		JobCards:         make([]model.JobCard, 0, len(d.JobCards)),
	}
	if d.DaysSinceMaintenance != nil {
		last := now.Add(-time.Duration(*d.DaysSinceMaintenance) * 24 * time.Hour)
		t.LastMaintenanceDate = &last
	}
	expired := make(map[model.CertificateType]bool, len(d.ExpiredCertificates))
	for _, ct := range d.ExpiredCertificates {
		expired[ct] = true
	}
	for _, ct := range []model.CertificateType{model.CertRollingStock, model.CertSignalling, model.CertTelecom} {
		c := model.FitnessCertificate{
			Type:              ct,
			IssueDate:         now.Add(-30 * 24 * time.Hour),
			ExpiryDate:        now.Add(certificateValidity),
			IsValid:           true,
			IssuingDepartment: "fixture",
		}
		if expired[ct] {
			c.ExpiryDate = now.Add(-24 * time.Hour)
			c.IsValid = false
		}
		t.FitnessCertificates = append(t.FitnessCertificates, c)
	}
	for _, jc := range d.JobCards {
		jc.TrainsetID = d.ID
		if jc.Status == "" {
			jc.Status = model.JobOpen
		}
		if jc.CreatedDate.IsZero() {
			jc.CreatedDate = now
		}
		t.JobCards = append(t.JobCards, jc)
	}
	return t
}

// Counts are the expected decisions per recommended status.
type Counts struct {
	Service     int `yaml:"revenue_service"`
	Standby     int `yaml:"standby"`
	Maintenance int `yaml:"maintenance"`
}

func (c Counts) byStatus() map[model.Status]int {
	return map[model.Status]int{
		model.StatusRevenueService: c.Service,
		model.StatusStandby:        c.Standby,
		model.StatusMaintenance:    c.Maintenance,
	}
}

type Expected struct {
	Baseline Counts                  `yaml:"baseline"`
	Scenario Counts                  `yaml:"scenario"`
	Changes  *int                    `yaml:"changes,omitempty"`
	Changed  map[string]model.Status `yaml:"changed,omitempty"`
}

type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Demand      int             `yaml:"demand"`
	Kind        scenario.Kind   `yaml:"kind"`
	Params      scenario.Params `yaml:"parameters"`
	Fleet       []TrainsetDef   `yaml:"fleet"`
	Expected    Expected        `yaml:"expected"`
}

// FleetAt expands every trainset definition relative to now.
func (s *Scenario) FleetAt(now time.Time) []model.Trainset {
	fleet := make([]model.Trainset, len(s.Fleet))
	for i, d := range s.Fleet {
		fleet[i] = d.ToModel(now)
	}
	return fleet
}

// Validate checks the fixture is usable before it is run.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Demand < 0 {
		return fmt.Errorf("scenario %s: negative demand", s.Name)
	}
	if len(s.Fleet) == 0 {
		return fmt.Errorf("scenario %s: empty fleet", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fleet))
	for _, d := range s.Fleet {
		if d.ID == "" {
			return fmt.Errorf("scenario %s: trainset id is required", s.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("scenario %s: duplicate trainset %s", s.Name, d.ID)
		}
		seen[d.ID] = struct{}{}
		for _, ct := range d.ExpiredCertificates {
			if _, err := model.ParseCertificateType(string(ct)); err != nil {
				return fmt.Errorf("scenario %s: trainset %s: %w", s.Name, d.ID, err)
			}
		}
	}
	return nil
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}
