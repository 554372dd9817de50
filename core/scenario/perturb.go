package scenario

import (
	"fmt"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

const (
	emergencyDescription = "Emergency maintenance - safety critical"
	weatherDescription   = "Weather impact inspection and cleaning"
)

// perturbation mutates a private fleet copy in place. Ids that are not in the
// fleet are ignored.
type perturbation func(fleet []model.Trainset, p Params, now time.Time)

var perturbations = map[Kind]perturbation{
	KindCertificateExpiry:    certificateExpiry,
	KindEmergencyMaintenance: emergencyMaintenance,
	KindIncreasedDemand:      func([]model.Trainset, Params, time.Time) {},
	KindEquipmentFailure:     equipmentFailure,
	KindWeatherImpact:        weatherImpact,
	KindCustom:               custom,
}

// Apply runs the perturbation for kind on fleet in place. Unknown kinds fall
// back to the custom mutator.
func Apply(fleet []model.Trainset, kind Kind, p Params, now time.Time) {
	fn, ok := perturbations[kind]
	if !ok {
		fn = custom
	}
	fn(fleet, p.withDefaults(), now)
}

func syntheticJobID(prefix, trainsetID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, trainsetID, now.Format("20060102"))
}

func expireCertificates(t *model.Trainset, ct model.CertificateType, now time.Time) {
	for i := range t.FitnessCertificates {
		if t.FitnessCertificates[i].Type != ct {
			continue
		}
		t.FitnessCertificates[i].IsValid = false
		t.FitnessCertificates[i].ExpiryDate = now.Add(-24 * time.Hour)
	}
}

func certificateExpiry(fleet []model.Trainset, p Params, now time.Time) {
	ids := p.idSet()
	for i := range fleet {
		if _, ok := ids[fleet[i].ID]; ok {
			expireCertificates(&fleet[i], p.CertificateType, now)
		}
	}
}

func emergencyMaintenance(fleet []model.Trainset, p Params, now time.Time) {
	ids := p.idSet()
	for i := range fleet {
		t := &fleet[i]
		if _, ok := ids[t.ID]; !ok {
			continue
		}
		t.JobCards = append(t.JobCards, model.JobCard{
			ID:             syntheticJobID("EMRG", t.ID, now),
			TrainsetID:     t.ID,
			Status:         model.JobOpen,
			Priority:       1,
			EstimatedHours: p.MaintenanceHours,
			Description:    emergencyDescription,
			CreatedDate:    now,
		})
	}
}

func equipmentFailure(fleet []model.Trainset, p Params, now time.Time) {
	for i := range fleet {
		t := &fleet[i]
		if t.ID != p.TrainsetID {
			continue
		}
		t.CurrentStatus = model.StatusMaintenance
		t.JobCards = append(t.JobCards, model.JobCard{
			ID:             syntheticJobID("FAIL", t.ID, now),
			TrainsetID:     t.ID,
			Status:         model.JobOpen,
			Priority:       1,
			EstimatedHours: p.RepairHours,
			Description:    p.FailureType + " system failure",
			CreatedDate:    now,
		})
	}
}

func weatherImpact(fleet []model.Trainset, p Params, now time.Time) {
	bays := make(map[int]struct{}, len(p.AffectedBays))
	for _, b := range p.AffectedBays {
		bays[b] = struct{}{}
	}
	for i := range fleet {
		t := &fleet[i]
		if t.StablingBay == nil {
			continue
		}
		if _, ok := bays[*t.StablingBay]; !ok {
			continue
		}
		t.JobCards = append(t.JobCards, model.JobCard{
			ID:             syntheticJobID("WTHR", t.ID, now),
			TrainsetID:     t.ID,
			Status:         model.JobOpen,
			Priority:       2,
			EstimatedHours: p.ImpactDurationHours,
			Description:    weatherDescription,
			CreatedDate:    now,
		})
	}
}

func custom(fleet []model.Trainset, p Params, now time.Time) {
	index := make(map[string]int, len(fleet))
	for i := range fleet {
		index[fleet[i].ID] = i
	}
	for _, mod := range p.Modifications {
		i, ok := index[mod.TrainsetID]
		if !ok || mod.Mutation == nil {
			continue
		}
		mod.Mutation.apply(&fleet[i], now)
	}
}
