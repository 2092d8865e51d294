package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "mpat.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Pipeline.UTMZone)
	assert.Positive(t, cfg.Pipeline.Workers)
	assert.InDelta(t, 100, cfg.Pipeline.CoastThresholdFt, 0.001)
	assert.InDelta(t, 50, cfg.Pipeline.StreamThresholdFt, 0.001)
	assert.InDelta(t, 3.3, cfg.Pipeline.DepthFloorFt, 0.001)
	assert.InDelta(t, -100, cfg.Pipeline.NoDataThreshold, 0.001)
	assert.Equal(t, "data", cfg.Inputs.Dir)
	assert.Equal(t, "parcels.shp", cfg.Inputs.Parcels)
	assert.Equal(t, "osds.csv", cfg.Inputs.OSDS)
	assert.Equal(t, "dem.asc", cfg.Inputs.DEM)
	assert.Equal(t, "tmk", cfg.Inputs.TMKField)
	assert.Equal(t, "ksat", cfg.Inputs.SoilCondField)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/mpat
log:
  level: debug
  format: console
pipeline:
  workers: 3
  coast_threshold_ft: 150
inputs:
  dir: /srv/gis/prepared
  tmk_field: TMK_TXT
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/mpat", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.InDelta(t, 150, cfg.Pipeline.CoastThresholdFt, 0.001)
	assert.Equal(t, "/srv/gis/prepared", cfg.Inputs.Dir)
	assert.Equal(t, "TMK_TXT", cfg.Inputs.TMKField)
	// Defaults still apply for unset values
	assert.InDelta(t, 50, cfg.Pipeline.StreamThresholdFt, 0.001)
	assert.Equal(t, "osds.csv", cfg.Inputs.OSDS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MPAT_STORE_DRIVER", "postgres")
	t.Setenv("MPAT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "noisy", Format: "json"})
	assert.Error(t, err)
}
