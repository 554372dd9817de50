package sources

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// JSONLCertificateFeed reads fitness certificates from an append-only JSONL
// file. Lines that fail to decode are skipped.
type JSONLCertificateFeed struct {
	path string
	mu   sync.Mutex
}

type certificateLine struct {
	TrainsetID string                `json:"trainset_id"`
	Type       model.CertificateType `json:"type"`
	IssueDate  time.Time             `json:"issue_date"`
	ExpiryDate time.Time             `json:"expiry_date"`
	IsValid    bool                  `json:"is_valid"`
	Department string                `json:"department"`
}

// NewJSONLCertificateFeed creates the file at path if needed.
func NewJSONLCertificateFeed(path string) (*JSONLCertificateFeed, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLCertificateFeed{path: path}, nil
}

// Append writes one certificate record.
func (s *JSONLCertificateFeed) Append(_ context.Context, rec ingestion.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	c := rec.Certificate
	return json.NewEncoder(f).Encode(certificateLine{
		TrainsetID: rec.TrainsetID,
		Type:       c.Type,
		IssueDate:  c.IssueDate,
		ExpiryDate: c.ExpiryDate,
		IsValid:    c.IsValid,
		Department: c.IssuingDepartment,
	})
}

// FetchCertificates returns every decodable record in file order.
func (s *JSONLCertificateFeed) FetchCertificates(ctx context.Context) ([]ingestion.CertificateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	res := []ingestion.CertificateRecord{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var l certificateLine
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			continue
		}
		if _, err := model.ParseCertificateType(string(l.Type)); err != nil || l.TrainsetID == "" {
			continue
		}
		res = append(res, ingestion.CertificateRecord{
			TrainsetID: l.TrainsetID,
			Certificate: model.FitnessCertificate{
				Type:              l.Type,
				IssueDate:         l.IssueDate,
				ExpiryDate:        l.ExpiryDate,
				IsValid:           l.IsValid,
				IssuingDepartment: l.Department,
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
