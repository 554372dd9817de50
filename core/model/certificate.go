package model

import (
	"fmt"
	"time"
)

// CertificateType identifies the department a fitness certificate covers.
type CertificateType string

const (
	CertRollingStock CertificateType = "rolling_stock"
	CertSignalling   CertificateType = "signalling"
	CertTelecom      CertificateType = "telecom"
)

// ParseCertificateType converts a string into a CertificateType.
func ParseCertificateType(s string) (CertificateType, error) {
	switch ct := CertificateType(s); ct {
	case CertRollingStock, CertSignalling, CertTelecom:
		return ct, nil
	default:
		return "", fmt.Errorf("unknown certificate type %q", s)
	}
}

// FitnessCertificate is a departmental clearance for running a trainset.
type FitnessCertificate struct {
	Type              CertificateType `json:"certificate_type" yaml:"certificate_type"`
	IssueDate         time.Time       `json:"issue_date" yaml:"issue_date"`
	ExpiryDate        time.Time       `json:"expiry_date" yaml:"expiry_date"`
	IsValid           bool            `json:"is_valid" yaml:"is_valid"`
	IssuingDepartment string          `json:"issuing_department" yaml:"issuing_department"`
}

// ValidAt reports whether the certificate is flagged valid and expires
// strictly after now. Neither condition implies the other.
func (c FitnessCertificate) ValidAt(now time.Time) bool {
	return c.IsValid && c.ExpiryDate.After(now)
}

// DaysUntilExpiry returns the whole days left before expiry, negative once
// expired.
func (c FitnessCertificate) DaysUntilExpiry(now time.Time) int {
	return int(c.ExpiryDate.Sub(now).Hours() / 24)
}
