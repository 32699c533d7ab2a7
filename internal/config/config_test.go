package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Alpha)
	assert.Equal(t, 1.0, cfg.Beta)
	assert.Equal(t, 1.0, cfg.Gamma)
	assert.Equal(t, 1000.0, cfg.Penalty)
	assert.Equal(t, 2.0, cfg.Detour)
	assert.Equal(t, 60, cfg.TickSeconds)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AuditDB)
}

func TestLoadParsesFlags(t *testing.T) {
	cfg, err := Load([]string{
		"--weight=2,3,4",
		"--penalty=500",
		"--detour=1.5",
		"--requests-csv=r.csv",
		"--vehicles-csv=v.csv",
		"--log-level=debug",
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Alpha)
	assert.Equal(t, 3.0, cfg.Beta)
	assert.Equal(t, 4.0, cfg.Gamma)
	assert.Equal(t, 500.0, cfg.Penalty)
	assert.Equal(t, 1.5, cfg.Detour)
	assert.Equal(t, "r.csv", cfg.RequestsCSV)
	assert.Equal(t, "v.csv", cfg.VehiclesCSV)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadPadsShortWeightSlice(t *testing.T) {
	cfg, err := Load([]string{"--weight=5"})
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Alpha)
	assert.Equal(t, 1.0, cfg.Beta)
	assert.Equal(t, 1.0, cfg.Gamma)
}
