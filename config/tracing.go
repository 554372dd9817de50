package config

import "fmt"

// TracingConfig enables OpenTelemetry tracing of API requests and engine
// runs. Spans are exported over OTLP/HTTP.
type TracingConfig struct {
	Enabled     bool    `json:"enabled"`
	Endpoint    string  `json:"endpoint"`
	ServiceName string  `json:"service_name"`
	SampleRate  float64 `json:"sample_rate"`
}

// SetDefaults fills unset fields.
func (c *TracingConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "induction-engine"
	}
	if c.Enabled && c.SampleRate == 0 {
		c.SampleRate = 1
	}
}

// Validate requires an endpoint when tracing is enabled.
func (c TracingConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0, 1]")
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when tracing is enabled")
	}
	return nil
}
