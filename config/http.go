package config

import "fmt"

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Address               string `json:"address"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// SetDefaults applies the default listen address and request timeout.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
}

func (c HTTPConfig) Validate() error {
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must be non-negative")
	}
	return nil
}
