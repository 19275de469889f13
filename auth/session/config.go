package session

import (
	"errors"
	"time"
)

// Config configures the session token service.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `mapstructure:"secret"`

	// Issuer is the "iss" claim stamped on every token.
	Issuer string `mapstructure:"issuer"`

	// TTL is the session token lifetime (default: 1h).
	TTL time.Duration `mapstructure:"ttl"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "voicegate"
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("session: secret is required")
	}
	return nil
}
