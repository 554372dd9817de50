package sources

import (
	"context"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// StaticJobCards serves a fixed list of work orders.
type StaticJobCards []model.JobCard

func (s StaticJobCards) FetchJobCards(context.Context) ([]model.JobCard, error) {
	out := make([]model.JobCard, len(s))
	copy(out, s)
	return out, nil
}

// SyntheticCertificates issues rolling-stock, signalling and telecom
// certificates for every roster trainset relative to the current time.
// Trainsets listed in ExpiredTelecom get a telecom certificate that is
// flagged invalid and expired five days ago.
type SyntheticCertificates struct {
	Roster         ingestion.Roster
	ExpiredTelecom []int
	Now            func() time.Time
}

func (s SyntheticCertificates) FetchCertificates(context.Context) ([]ingestion.CertificateRecord, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	expired := make(map[int]bool, len(s.ExpiredTelecom))
	for _, i := range s.ExpiredTelecom {
		expired[i] = true
	}
	day := 24 * time.Hour
	res := make([]ingestion.CertificateRecord, 0, 3*s.Roster.Size)
	for i := 1; i <= s.Roster.Size; i++ {
		id := s.Roster.ID(i)
		telecomExpiry := 180
		if expired[i] {
			telecomExpiry = -5
		}
		res = append(res,
			ingestion.CertificateRecord{TrainsetID: id, Certificate: model.FitnessCertificate{
				Type: model.CertRollingStock, IssueDate: now.Add(-30 * day), ExpiryDate: now.Add(335 * day),
				IsValid: true, IssuingDepartment: "Rolling Stock",
			}},
			ingestion.CertificateRecord{TrainsetID: id, Certificate: model.FitnessCertificate{
				Type: model.CertSignalling, IssueDate: now.Add(-15 * day), ExpiryDate: now.Add(350 * day),
				IsValid: true, IssuingDepartment: "Signalling",
			}},
			ingestion.CertificateRecord{TrainsetID: id, Certificate: model.FitnessCertificate{
				Type: model.CertTelecom, IssueDate: now.Add(-45 * day), ExpiryDate: now.Add(time.Duration(telecomExpiry) * day),
				IsValid: !expired[i], IssuingDepartment: "Telecom",
			}},
		)
	}
	return res, nil
}
