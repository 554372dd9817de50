package ingestion

import (
	"errors"
	"fmt"
	"io"

	"github.com/hydrolox-0/ff-sih-backup/core/factory"
)

// OverrideStore is an OverrideSource that operators can write to.
type OverrideStore interface {
	OverrideSource
	Add(o Override) error
	Remove(trainsetID string) bool
}

// Config selects the implementation of each source. A source with an empty
// type is disabled.
type Config struct {
	JobCards              factory.ModuleConfig `json:"job_cards"`
	Certificates          factory.ModuleConfig `json:"certificates"`
	Overrides             factory.ModuleConfig `json:"overrides"`
	RefreshTimeoutSeconds int                  `json:"refresh_timeout_seconds"`
}

// SetDefaults enables the in-memory override store and a 30 second refresh bound.
func (c *Config) SetDefaults() {
	if c.Overrides.Type == "" {
		c.Overrides.Type = "memory"
	}
	if c.RefreshTimeoutSeconds == 0 {
		c.RefreshTimeoutSeconds = 30
	}
}

// Validate checks the refresh bound. Source types are resolved by NewSources.
func (c Config) Validate() error {
	if c.RefreshTimeoutSeconds < 0 {
		return fmt.Errorf("refresh_timeout_seconds must be non-negative")
	}
	return nil
}

var (
	jobCardSources     = factory.NewRegistry[JobCardSource]()
	certificateSources = factory.NewRegistry[CertificateSource]()
	overrideStores     = factory.NewRegistry[OverrideStore]()
)

// RegisterJobCardSource adds a work-order source factory.
func RegisterJobCardSource(name string, f factory.Factory[JobCardSource]) error {
	return jobCardSources.Register(name, f)
}

// RegisterCertificateSource adds a certificate source factory.
func RegisterCertificateSource(name string, f factory.Factory[CertificateSource]) error {
	return certificateSources.Register(name, f)
}

// RegisterOverrideStore adds an override store factory.
func RegisterOverrideStore(name string, f factory.Factory[OverrideStore]) error {
	return overrideStores.Register(name, f)
}

// Sources holds the instantiated sources of a Config.
type Sources struct {
	JobCards     JobCardSource
	Certificates CertificateSource
	Overrides    OverrideStore
}

// NewSources instantiates every configured source. Sources already opened are
// closed when a later one fails.
func NewSources(c Config) (Sources, error) {
	var s Sources
	fail := func(kind string, err error) (Sources, error) {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return Sources{}, fmt.Errorf("%s source: %w", kind, err)
	}
	var err error
	if c.JobCards.Type != "" {
		if s.JobCards, err = jobCardSources.Create(c.JobCards); err != nil {
			return fail(SourceJobCards, err)
		}
	}
	if c.Certificates.Type != "" {
		if s.Certificates, err = certificateSources.Create(c.Certificates); err != nil {
			return fail(SourceCertificates, err)
		}
	}
	if c.Overrides.Type != "" {
		if s.Overrides, err = overrideStores.Create(c.Overrides); err != nil {
			return fail(SourceOverrides, err)
		}
	}
	return s, nil
}

// Close closes every source that holds resources.
func (s Sources) Close() error {
	var errs []error
	for _, src := range []any{s.JobCards, s.Certificates, s.Overrides} {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
