package config

import (
	"fmt"

	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/util"
	"github.com/streamkit/streamkit/validation"
	"github.com/streamkit/streamkit/version"
)

// Config contains the configuration fields every streamkit application needs.
// Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Ingest        IngestConfig `yaml:"ingest" mapstructure:"ingest"`
//	}
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"required,oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Pipelines     PipelinesConfig     `yaml:"pipelines" mapstructure:"pipelines"`
}

// ObservabilityConfig controls OTLP export of traces and metrics.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// PipelinesConfig controls where pipeline definition files are loaded from.
type PipelinesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// GetConfig returns the base Config.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically exposes the base sections.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	c.Environment = util.Coalesce(c.Environment, "development")
	c.Version = util.Coalesce(c.Version, version.Version)
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate the application name into logging so Init() uses the right tag.
	c.Logging.ServiceName = util.Coalesce(c.Logging.ServiceName, c.Name)
	c.Logging.ApplyDefaults()

	c.Observability.Endpoint = util.Coalesce(c.Observability.Endpoint, "localhost:4318")
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	c.Pipelines.Dir = util.Coalesce(c.Pipelines.Dir, "./pipelines")
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.Config.Validate() first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
