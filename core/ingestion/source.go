package ingestion

import (
	"context"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// Source names used in snapshot error reports, logs and metrics.
const (
	SourceJobCards     = "job_cards"
	SourceCertificates = "certificates"
	SourceOverrides    = "overrides"
)

// JobCardSource provides the work orders of the fleet.
type JobCardSource interface {
	FetchJobCards(ctx context.Context) ([]model.JobCard, error)
}

// CertificateRecord is a fitness certificate tagged with its trainset.
type CertificateRecord struct {
	TrainsetID  string `json:"trainset_id"`
	Certificate model.FitnessCertificate
}

// CertificateSource provides fitness certificates from the depot sensors.
type CertificateSource interface {
	FetchCertificates(ctx context.Context) ([]CertificateRecord, error)
}

// Override is a manual operator decision for one trainset.
type Override struct {
	TrainsetID     string       `json:"trainset_id"`
	StatusOverride model.Status `json:"status_override,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	OverrideBy     string       `json:"override_by,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// OverrideSource provides the active manual overrides.
type OverrideSource interface {
	FetchOverrides(ctx context.Context) ([]Override, error)
}
