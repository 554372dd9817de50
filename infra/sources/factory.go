package sources

import (
	"context"
	"fmt"

	"github.com/hydrolox-0/ff-sih-backup/core/factory"
	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func init() {
	_ = ingestion.RegisterJobCardSource("sqlite", func(conf map[string]any) (ingestion.JobCardSource, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "job_cards.db"
		}
		return OpenSQLiteJobCardStore(c.Path)
	})

	_ = ingestion.RegisterJobCardSource("postgres", func(conf map[string]any) (ingestion.JobCardSource, error) {
		var c struct {
			DSN string `json:"dsn"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.DSN == "" {
			return nil, fmt.Errorf("postgres job cards: dsn is required")
		}
		return OpenPostgresJobCardStore(c.DSN)
	})

	_ = ingestion.RegisterJobCardSource("static", func(conf map[string]any) (ingestion.JobCardSource, error) {
		var c struct {
			JobCards []model.JobCard `json:"job_cards"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return StaticJobCards(c.JobCards), nil
	})

	_ = ingestion.RegisterCertificateSource("jsonl", func(conf map[string]any) (ingestion.CertificateSource, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "certificates.jsonl"
		}
		return NewJSONLCertificateFeed(c.Path)
	})

	_ = ingestion.RegisterCertificateSource("static", func(conf map[string]any) (ingestion.CertificateSource, error) {
		var c struct {
			Roster         ingestion.Roster `json:"roster"`
			ExpiredTelecom []int            `json:"expired_telecom"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.Roster.SetDefaults()
		return SyntheticCertificates{Roster: c.Roster, ExpiredTelecom: c.ExpiredTelecom}, nil
	})

	_ = ingestion.RegisterOverrideStore("memory", func(map[string]any) (ingestion.OverrideStore, error) {
		return NewMemoryOverrideStore(), nil
	})

	_ = ingestion.RegisterOverrideStore("redis", func(conf map[string]any) (ingestion.OverrideStore, error) {
		var opts RedisOptions
		if err := factory.Decode(conf, &opts); err != nil {
			return nil, err
		}
		return NewRedisOverrideStore(context.Background(), opts)
	})
}
