// Package config supplies cmd/blockflow-cli's env-driven defaults for the
// simulation parameters a Model's GlobalSettings would otherwise leave
// unset. The core itself never reads the environment: internal/flatten,
// internal/propagator, internal/runtime and internal/codegen all take
// GlobalSettings as an explicit argument, the same "config is a CLI-only
// concern" split the teacher draws between its internal/config (server
// port/log level/DSN) and the rest of the engine.
package config

import (
	"os"
	"strconv"

	"github.com/smilemakc/blockflow/internal/domain"
)

// Config holds the CLI's fallback simulation settings, used only when a
// loaded Model's GlobalSettings fields are left at their zero value.
type Config struct {
	LogLevel           string
	SimulationDuration float64
	SimulationTimeStep float64
	IntegrationMethod  domain.IntegrationMethod
}

// Load reads BLOCKFLOW_LOG_LEVEL, BLOCKFLOW_DURATION, BLOCKFLOW_DT and
// BLOCKFLOW_INTEGRATION_METHOD, falling back to sane defaults for any
// unset or malformed value.
func Load() *Config {
	return &Config{
		LogLevel:           getEnv("BLOCKFLOW_LOG_LEVEL", "info"),
		SimulationDuration: getEnvFloat("BLOCKFLOW_DURATION", 10.0),
		SimulationTimeStep: getEnvFloat("BLOCKFLOW_DT", 0.01),
		IntegrationMethod:  domain.IntegrationMethod(getEnv("BLOCKFLOW_INTEGRATION_METHOD", string(domain.IntegrationRK4))),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// ApplyDefaults fills any zero-valued simulation field on settings from c,
// leaving an explicitly configured Model untouched.
func (c *Config) ApplyDefaults(settings domain.GlobalSettings) domain.GlobalSettings {
	if settings.SimulationDuration == 0 {
		settings.SimulationDuration = c.SimulationDuration
	}
	if settings.SimulationTimeStep == 0 {
		settings.SimulationTimeStep = c.SimulationTimeStep
	}
	if settings.IntegrationMethod == "" {
		settings.IntegrationMethod = c.IntegrationMethod
	}
	return settings
}
