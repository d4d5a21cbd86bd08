package remote

import (
	"time"

	"github.com/kbukum/speechkit/validation"
)

const (
	// DefaultBaseURL is the OpenAI v1 API root.
	DefaultBaseURL = "https://api.openai.com/v1/"

	defaultTimeout = 120 * time.Second
)

// Config configures the remote backend.
type Config struct {
	// BaseURL is the API root; endpoints are resolved relative to it.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// APIKey is sent as a bearer token, or in AuthHeader when that is set.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// AuthHeader sends the key in a named header instead, e.g. "api-key".
	AuthHeader string `yaml:"auth_header" mapstructure:"auth_header"`
	// Timeout bounds each HTTP call. Expiry surfaces as a TIMEOUT error.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the struct rules.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
