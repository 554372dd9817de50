package model

import "time"

// BrandingContract is an advertising wrap obligation carried by a trainset.
type BrandingContract struct {
	ContractID            string    `json:"contract_id" yaml:"contract_id"`
	Advertiser            string    `json:"advertiser" yaml:"advertiser"`
	RequiredExposureHours float64   `json:"required_exposure_hours" yaml:"required_exposure_hours"`
	CurrentExposureHours  float64   `json:"current_exposure_hours" yaml:"current_exposure_hours"`
	StartDate             time.Time `json:"start_date" yaml:"start_date"`
	EndDate               time.Time `json:"end_date" yaml:"end_date"`
	PenaltyRate           float64   `json:"penalty_rate" yaml:"penalty_rate"` // per hour of shortfall
}

// ExposureShortfall returns the exposure hours still owed, never negative.
func (b BrandingContract) ExposureShortfall() float64 {
	if d := b.RequiredExposureHours - b.CurrentExposureHours; d > 0 {
		return d
	}
	return 0
}

// ShortfallPenalty is the penalty incurred if the contract ended now.
func (b BrandingContract) ShortfallPenalty() float64 {
	return b.ExposureShortfall() * b.PenaltyRate
}

// ActiveAt reports whether t falls within the contract window. A zero end
// date means the contract is open ended.
func (b BrandingContract) ActiveAt(t time.Time) bool {
	if !b.StartDate.IsZero() && t.Before(b.StartDate) {
		return false
	}
	return b.EndDate.IsZero() || !t.After(b.EndDate)
}
