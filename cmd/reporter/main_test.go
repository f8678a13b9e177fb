package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/config"
)

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bizpulse.yaml")
	yaml := `
paths:
  input_workbook: data/input.xlsx
  output_dir: data/reports
pipeline:
  pareto_cap: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/input.xlsx", cfg.Paths.InputWorkbook)
	assert.Equal(t, 50, cfg.Pipeline.ParetoCap)
	// Unset knobs fall back to defaults
	assert.Equal(t, config.DedupKeepFirst, cfg.Pipeline.DedupPolicy)
	assert.InDelta(t, 0.995, cfg.Pipeline.AnomalyPercentile, 1e-9)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 200, cfg.Pipeline.ParetoCap)
}
