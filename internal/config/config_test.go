package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, 8, cfg.Engine.WorkerConcurrency)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, 0, cfg.Output.Top)
}

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/priorank.log
engine:
  worker_concurrency: 2
dataset:
  diseases: data/diseases.json
  raw_values: data/values.json
output:
  format: json
  top: 25
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/log/priorank.log", cfg.Logger.LogFile)
	assert.Equal(t, 2, cfg.Engine.WorkerConcurrency)
	assert.Equal(t, "data/diseases.json", cfg.Dataset.Diseases)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 25, cfg.Output.Top)
}

func TestValidate(t *testing.T) {
	t.Run("Invalid Concurrency", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Engine.WorkerConcurrency = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine.worker_concurrency must be a positive integer")
	})

	t.Run("Invalid Output Format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Output.Format = "parquet"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.format must be one of csv, json")
	})

	t.Run("Negative Top", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Output.Top = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.top must not be negative")
	})

	t.Run("Validation Failure Through Factory", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("engine.worker_concurrency", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
