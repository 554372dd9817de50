package induction

import (
	"math"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// neutralScore is used for a sub-score whose input is unknown.
const neutralScore = 0.5

// maintenanceWindowDays normalises days since last maintenance.
const maintenanceWindowDays = 30.0

// ScoreBreakdown holds the five sub-scores and their weighted sum.
type ScoreBreakdown struct {
	Readiness          float64 `json:"readiness"`
	MileageBalance     float64 `json:"mileage_balance"`
	BrandingPriority   float64 `json:"branding_priority"`
	MaintenanceUrgency float64 `json:"maintenance_urgency"`
	StablingEfficiency float64 `json:"stabling_efficiency"`
	Composite          float64 `json:"composite"`
}

// Scorer computes the composite priority score of a trainset. It is pure:
// the result depends only on the trainset, the configuration and the
// evaluation instant.
type Scorer struct {
	cfg Config
}

// NewScorer returns a scorer using cfg. Unset fields take their defaults so
// that the scorer never divides by zero.
func NewScorer(cfg Config) Scorer {
	cfg.SetDefaults()
	if cfg.FleetAverageMileage < 0 {
		cfg.FleetAverageMileage = DefaultFleetAverageMileage
	}
	if cfg.TotalFleetSize < 0 {
		cfg.TotalFleetSize = DefaultTotalFleetSize
	}
	return Scorer{cfg: cfg}
}

// Config returns the scorer configuration.
func (s Scorer) Config() Config { return s.cfg }

// Score returns the weighted composite score at now.
func (s Scorer) Score(t model.Trainset, now time.Time) float64 {
	return s.Breakdown(t, now).Composite
}

// Breakdown returns every sub-score together with the composite.
func (s Scorer) Breakdown(t model.Trainset, now time.Time) ScoreBreakdown {
	b := ScoreBreakdown{
		Readiness:          readinessScore(t, now),
		MileageBalance:     s.mileageScore(t),
		BrandingPriority:   brandingScore(t),
		MaintenanceUrgency: maintenanceScore(t, now),
		StablingEfficiency: s.stablingScore(t),
	}
	w := s.cfg.Weights
	b.Composite = w.ServiceReadiness*b.Readiness +
		w.MileageBalance*b.MileageBalance +
		w.BrandingPriority*b.BrandingPriority +
		w.MaintenanceUrgency*b.MaintenanceUrgency +
		w.StablingEfficiency*b.StablingEfficiency
	return b
}

func readinessScore(t model.Trainset, now time.Time) float64 {
	if t.IsServiceReady(now) {
		return 1
	}
	return 0
}

// mileageScore favours trainsets below the configured fleet average.
func (s Scorer) mileageScore(t model.Trainset) float64 {
	avg := s.cfg.FleetAverageMileage
	return math.Max(0, 1-(t.CurrentMileage-avg)/avg)
}

// brandingScore favours trainsets still owing advertising exposure. A
// contract without required hours is considered fulfilled.
func brandingScore(t model.Trainset) float64 {
	bc := t.BrandingContract
	if bc == nil {
		return neutralScore
	}
	if bc.RequiredExposureHours <= 0 {
		return 0
	}
	return math.Max(0, 1-bc.CurrentExposureHours/bc.RequiredExposureHours)
}

// maintenanceScore grows with the whole days elapsed since the last
// maintenance, saturating at 30 days.
func maintenanceScore(t model.Trainset, now time.Time) float64 {
	if t.LastMaintenanceDate == nil {
		return neutralScore
	}
	days := math.Floor(now.Sub(*t.LastMaintenanceDate).Hours() / 24)
	return math.Min(1, days/maintenanceWindowDays)
}

// stablingScore favours low bay numbers, which are quicker to shunt out.
func (s Scorer) stablingScore(t model.Trainset) float64 {
	if t.StablingBay == nil {
		return neutralScore
	}
	return math.Max(0, 1-float64(*t.StablingBay)/float64(s.cfg.TotalFleetSize))
}
