package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/blockflow/internal/domain"
)

func TestLoad_DefaultsWithoutEnv(t *testing.T) {
	for _, key := range []string{"BLOCKFLOW_LOG_LEVEL", "BLOCKFLOW_DURATION", "BLOCKFLOW_DT", "BLOCKFLOW_INTEGRATION_METHOD"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10.0, cfg.SimulationDuration)
	assert.Equal(t, 0.01, cfg.SimulationTimeStep)
	assert.Equal(t, domain.IntegrationRK4, cfg.IntegrationMethod)
}

func TestLoad_ReadsEnvOverrides(t *testing.T) {
	t.Setenv("BLOCKFLOW_LOG_LEVEL", "debug")
	t.Setenv("BLOCKFLOW_DURATION", "5")
	t.Setenv("BLOCKFLOW_DT", "0.05")
	t.Setenv("BLOCKFLOW_INTEGRATION_METHOD", "euler")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5.0, cfg.SimulationDuration)
	assert.Equal(t, 0.05, cfg.SimulationTimeStep)
	assert.Equal(t, domain.IntegrationEuler, cfg.IntegrationMethod)
}

func TestLoad_MalformedFloatFallsBackToDefault(t *testing.T) {
	t.Setenv("BLOCKFLOW_DURATION", "not-a-number")
	cfg := Load()
	assert.Equal(t, 10.0, cfg.SimulationDuration)
}

func TestApplyDefaults_OnlyFillsZeroFields(t *testing.T) {
	cfg := &Config{SimulationDuration: 99, SimulationTimeStep: 0.02, IntegrationMethod: domain.IntegrationEuler}

	settings := cfg.ApplyDefaults(domain.GlobalSettings{SimulationDuration: 1})
	assert.Equal(t, 1.0, settings.SimulationDuration)
	assert.Equal(t, 0.02, settings.SimulationTimeStep)
	assert.Equal(t, domain.IntegrationEuler, settings.IntegrationMethod)
}
