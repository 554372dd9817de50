package prediction

import (
	"math"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Features are the model inputs derived from a trainset.
type Features struct {
	TrainsetID               string  `json:"trainset_id"`
	Mileage                  float64 `json:"mileage"`
	DaysSinceMaintenance     float64 `json:"days_since_maintenance"`
	CertificateDaysRemaining float64 `json:"certificate_days_remaining"`
	OpenJobCards             int     `json:"open_job_cards"`
	MaintenanceUrgency       float64 `json:"maintenance_urgency"`
	CertificateUrgency       float64 `json:"certificate_urgency"`
}

// FeaturesOf extracts features at now. Missing maintenance history counts
// as zero days; a trainset without certificates has no remaining days.
func FeaturesOf(t model.Trainset, now time.Time) Features {
	f := Features{
		TrainsetID:   t.ID,
		Mileage:      t.CurrentMileage,
		OpenJobCards: t.OpenJobCards(),
	}
	if t.LastMaintenanceDate != nil {
		f.DaysSinceMaintenance = math.Max(0, math.Floor(now.Sub(*t.LastMaintenanceDate).Hours()/24))
	}
	if len(t.FitnessCertificates) > 0 {
		nearest := math.Inf(1)
		for _, c := range t.FitnessCertificates {
			nearest = math.Min(nearest, float64(c.DaysUntilExpiry(now)))
		}
		f.CertificateDaysRemaining = math.Max(0, nearest)
	}
	f.MaintenanceUrgency = 1 / (f.DaysSinceMaintenance + 1)
	f.CertificateUrgency = 1 / (f.CertificateDaysRemaining + 1)
	return f
}
