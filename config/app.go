package config

import (
	"fmt"

	"github.com/skillsenselab/voicegate/auth/session"
	"github.com/skillsenselab/voicegate/embedding/ecapa"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/server"
	"github.com/skillsenselab/voicegate/speaker"
	"github.com/skillsenselab/voicegate/validation"
)

// StorageConfig configures the enrollment data store.
type StorageConfig struct {
	// Path is the base directory holding the registry and embedding artifacts.
	Path string `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults applies default values to storage configuration.
func (c *StorageConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "./data"
	}
}

// SpeakerConfig configures the identification decision.
type SpeakerConfig struct {
	// Threshold is the maximum cosine distance for an accepted login.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ApplyDefaults applies default values to speaker configuration.
func (c *SpeakerConfig) ApplyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = speaker.DefaultThreshold
	}
}

// Validate validates speaker configuration.
func (c *SpeakerConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 2 {
		return fmt.Errorf("speaker.threshold must be in [0, 2] (got: %g)", c.Threshold)
	}
	return nil
}

// ObservabilityConfig configures OTLP metric and trace export.
type ObservabilityConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults applies default values to observability configuration.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
		c.Insecure = true
	}
}

// AppConfig is the full configuration for the voicegate service.
type AppConfig struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"required,oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Auth          session.Config      `yaml:"auth" mapstructure:"auth"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Extractor     ecapa.Config        `yaml:"extractor" mapstructure:"extractor"`
	Speaker       SpeakerConfig       `yaml:"speaker" mapstructure:"speaker"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "voicegate"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Extractor.ApplyDefaults()
	c.Speaker.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the tagged top-level fields, then every section.
func (c *AppConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Speaker.Validate(); err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	return nil
}
