package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DedupKeepFirst, cfg.Pipeline.DedupPolicy)
	assert.Equal(t, 200, cfg.Pipeline.ParetoCap)
	assert.Equal(t, 0.995, cfg.Pipeline.AnomalyPercentile)
	assert.Equal(t, 40.0, cfg.Pipeline.AnomalyDiscountPct)
	assert.Equal(t, 5, cfg.Pipeline.RFMTiers)
	assert.Equal(t, "reports", cfg.Paths.OutputDir)
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "bizpulse.yaml")
	content := `
logging:
  level: debug
  format: text
paths:
  input_workbook: data/in.xlsx
  output_dir: data/out
pipeline:
  dedup_policy: keep-max-net
  pareto_cap: 50
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "data/in.xlsx", cfg.Paths.InputWorkbook)
	assert.Equal(t, "data/out", cfg.Paths.OutputDir)
	assert.Equal(t, DedupKeepMaxNet, cfg.Pipeline.DedupPolicy)
	assert.Equal(t, 50, cfg.Pipeline.ParetoCap)
	// Unset fields still get defaults
	assert.Equal(t, 0.995, cfg.Pipeline.AnomalyPercentile)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "bizpulse.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("pipeline:\n  pareto_cap: 50\n"), 0644))

	t.Setenv("BIZPULSE_PIPELINE_PARETO_CAP", "75")
	t.Setenv("BIZPULSE_LOGGING_LEVEL", "warn")

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Pipeline.ParetoCap)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "bad dedup policy",
			content: "pipeline:\n  dedup_policy: keep-random\n",
		},
		{
			name:    "bad log level",
			content: "logging:\n  level: loud\n",
		},
		{
			name:    "percentile out of range",
			content: "pipeline:\n  anomaly_percentile: 1.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "bizpulse.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.content), 0644))

			_, err := LoadFrom(configFile)
			assert.Error(t, err)
		})
	}
}
