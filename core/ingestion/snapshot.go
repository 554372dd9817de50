package ingestion

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Snapshot is an immutable view of the fleet at RefreshedAt. Engine calls
// receive copies obtained through Fleet.
type Snapshot struct {
	trainsets    []model.Trainset
	RefreshedAt  time.Time
	SourceErrors map[string]string
}

// NewSnapshot copies fleet into a new snapshot.
func NewSnapshot(fleet []model.Trainset, at time.Time, sourceErrors map[string]string) Snapshot {
	errs := make(map[string]string, len(sourceErrors))
	for k, v := range sourceErrors {
		errs[k] = v
	}
	return Snapshot{trainsets: model.CloneFleet(fleet), RefreshedAt: at, SourceErrors: errs}
}

// Fleet returns a deep copy of the trainsets that the caller may mutate.
func (s Snapshot) Fleet() []model.Trainset {
	return model.CloneFleet(s.trainsets)
}

// Len returns the number of trainsets.
func (s Snapshot) Len() int { return len(s.trainsets) }

// IsZero reports whether the snapshot was never refreshed.
func (s Snapshot) IsZero() bool { return s.RefreshedAt.IsZero() }

// Trainset returns a copy of the trainset with the given id.
func (s Snapshot) Trainset(id string) (model.Trainset, bool) {
	for _, t := range s.trainsets {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Trainset{}, false
}

// Stats summarises the snapshot for status reporting.
type Stats struct {
	Trainsets      int            `json:"trainsets"`
	Ready          int            `json:"service_ready"`
	ByStatus       map[string]int `json:"by_status"`
	MeanMileage    float64        `json:"mean_mileage"`
	OpenJobCards   int            `json:"open_job_cards"`
	ActiveBranding int            `json:"active_branding_contracts"`
}

// Stats computes readiness and mileage figures at now.
func (s Snapshot) Stats(now time.Time) Stats {
	st := Stats{Trainsets: len(s.trainsets), ByStatus: make(map[string]int)}
	mileage := make([]float64, 0, len(s.trainsets))
	for _, t := range s.trainsets {
		if t.IsServiceReady(now) {
			st.Ready++
		}
		st.ByStatus[string(t.CurrentStatus)]++
		st.OpenJobCards += t.OpenJobCards()
		if t.BrandingContract != nil && t.BrandingContract.ActiveAt(now) {
			st.ActiveBranding++
		}
		mileage = append(mileage, t.CurrentMileage)
	}
	if len(mileage) > 0 {
		st.MeanMileage = stat.Mean(mileage, nil)
	}
	return st
}
