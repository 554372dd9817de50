package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/infra/mqtt"
)

type Config struct {
	Fleet        ingestion.Roster   `json:"fleet"`
	Optimization OptimizationConfig `json:"optimization"`
	Ingestion    ingestion.Config   `json:"ingestion"`
	MQTT         mqtt.Config        `json:"mqtt"`
	Metrics      metrics.Config     `json:"metrics"`
	HTTP         HTTPConfig         `json:"http"`
	Logging      LoggingConfig      `json:"logging"`
	Sentry       SentryConfig       `json:"sentry"`
	Tracing      TracingConfig      `json:"tracing"`
}

// Load reads the YAML or JSON file at path, applies K_ environment
// overrides and validates the result. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Fleet.SetDefaults()
	if c.Optimization.TotalFleetSize == 0 {
		c.Optimization.TotalFleetSize = c.Fleet.Size
	}
	c.Optimization.SetDefaults()
	c.Ingestion.SetDefaults()
	c.MQTT.SetDefaults()
	c.HTTP.SetDefaults()
	c.Logging.SetDefaults()
	c.Tracing.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		section string
		fn      func() error
	}{
		{"fleet", c.Fleet.Validate},
		{"optimization", c.Optimization.Validate},
		{"ingestion", c.Ingestion.Validate},
		{"mqtt", c.MQTT.Validate},
		{"http", c.HTTP.Validate},
		{"logging", c.Logging.Validate},
		{"tracing", c.Tracing.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.section, err)
		}
	}
	return nil
}
