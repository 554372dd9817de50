package model

import (
	"fmt"
	"time"
)

// DefaultCarCount is the number of cars in a standard trainset.
const DefaultCarCount = 4

// Trainset is one multi-car fleet unit tracked by the induction engine.
// Certificates and job cards are owned by the snapshot holding the trainset;
// use Clone before mutating a shared value.
type Trainset struct {
	ID                  string               `json:"trainset_id" yaml:"trainset_id"`
	CarCount            int                  `json:"car_count" yaml:"car_count"`
	CurrentStatus       Status               `json:"current_status" yaml:"current_status"`
	CurrentMileage      float64              `json:"current_mileage" yaml:"current_mileage"`
	LastMaintenanceDate *time.Time           `json:"last_maintenance_date,omitempty" yaml:"last_maintenance_date,omitempty"`
	FitnessCertificates []FitnessCertificate `json:"fitness_certificates" yaml:"fitness_certificates"`
	JobCards            []JobCard            `json:"job_cards" yaml:"job_cards"`
	BrandingContract    *BrandingContract    `json:"branding_contract,omitempty" yaml:"branding_contract,omitempty"`
	StablingBay         *int                 `json:"stabling_bay,omitempty" yaml:"stabling_bay,omitempty"`
	LastCleaningDate    *time.Time           `json:"last_cleaning_date,omitempty" yaml:"last_cleaning_date,omitempty"`
}

// IsServiceReady reports whether the trainset may enter revenue service at
// now: every attached certificate is valid and no critical job card is open.
// A trainset without certificates passes the certificate check; absence of a
// record is not treated as an expired certificate.
func (t Trainset) IsServiceReady(now time.Time) bool {
	for _, c := range t.FitnessCertificates {
		if !c.ValidAt(now) {
			return false
		}
	}
	for _, j := range t.JobCards {
		if j.IsCritical() {
			return false
		}
	}
	return true
}

// OpenJobCards counts job cards that are not closed.
func (t Trainset) OpenJobCards() int {
	n := 0
	for _, j := range t.JobCards {
		if j.Status != JobClosed {
			n++
		}
	}
	return n
}

// Certificate returns the first certificate of the given type.
func (t Trainset) Certificate(ct CertificateType) (FitnessCertificate, bool) {
	for _, c := range t.FitnessCertificates {
		if c.Type == ct {
			return c, true
		}
	}
	return FitnessCertificate{}, false
}

// Validate checks identifiers and value ranges of the trainset and its job
// cards.
func (t Trainset) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trainset id is required")
	}
	if t.CurrentMileage < 0 {
		return fmt.Errorf("trainset %s: negative mileage", t.ID)
	}
	if t.CurrentStatus != "" && !t.CurrentStatus.Valid() {
		return fmt.Errorf("trainset %s: unknown status %q", t.ID, t.CurrentStatus)
	}
	for _, j := range t.JobCards {
		if err := j.Validate(); err != nil {
			return fmt.Errorf("trainset %s: %w", t.ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy. Collections of the copy are never nil.
func (t Trainset) Clone() Trainset {
	cp := t
	cp.FitnessCertificates = make([]FitnessCertificate, len(t.FitnessCertificates))
	copy(cp.FitnessCertificates, t.FitnessCertificates)
	cp.JobCards = make([]JobCard, len(t.JobCards))
	copy(cp.JobCards, t.JobCards)
	if t.BrandingContract != nil {
		b := *t.BrandingContract
		cp.BrandingContract = &b
	}
	if t.StablingBay != nil {
		bay := *t.StablingBay
		cp.StablingBay = &bay
	}
	cp.LastMaintenanceDate = cloneTime(t.LastMaintenanceDate)
	cp.LastCleaningDate = cloneTime(t.LastCleaningDate)
	return cp
}

// CloneFleet deep copies every trainset in fleet.
func CloneFleet(fleet []Trainset) []Trainset {
	out := make([]Trainset, len(fleet))
	for i, t := range fleet {
		out[i] = t.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
