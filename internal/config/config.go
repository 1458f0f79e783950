// Package config holds the application configuration, loaded through viper
// from a YAML file, environment variables (PRIORANK_ prefix), and defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full application configuration, minus the criteria section:
// that one is case-sensitive (mapping-table labels) and is decoded verbatim
// by the criteria package rather than through viper's lowercased key tree.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// LoggerConfig configures the global logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig tunes the scoring engine.
type EngineConfig struct {
	// WorkerConcurrency bounds the per-disease evaluation pool.
	WorkerConcurrency int `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
}

// DatasetConfig points at the curated input documents.
type DatasetConfig struct {
	Diseases  string `mapstructure:"diseases" yaml:"diseases"`
	RawValues string `mapstructure:"raw_values" yaml:"raw_values"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Path   string `mapstructure:"path" yaml:"path"`
	// Top limits the report to the N highest-ranked diseases; 0 means all.
	Top int `mapstructure:"top" yaml:"top"`
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "priorank")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.worker_concurrency", 8)

	// -- Output --
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.path", "")
	v.SetDefault("output.top", 0)
}

// NewDefaultConfig returns a Config populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper unmarshals and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks structural settings. Criteria content is deliberately not
// validated here; criteria.Compile owns that and runs before any scoring.
func (c *Config) Validate() error {
	if c.Engine.WorkerConcurrency <= 0 {
		return fmt.Errorf("engine.worker_concurrency must be a positive integer")
	}
	switch c.Output.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("output.format must be one of csv, json; got %q", c.Output.Format)
	}
	if c.Output.Top < 0 {
		return fmt.Errorf("output.top must not be negative")
	}
	return nil
}
