package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAPIKeyEnv(t *testing.T) {
	t.Setenv("METEO_WEATHER_API_KEY", "")
	t.Setenv("OPENWEATHER_API_KEY", "")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearAPIKeyEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	clearAPIKeyEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Weather.APIKey)
	assert.Equal(t, "fr", cfg.Weather.Lang)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, 5, cfg.Weather.ForecastDays)
	assert.Equal(t, 5, cfg.Storage.Limit)
	assert.Equal(t, "recent_searches", cfg.Storage.Key)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearAPIKeyEnv(t)
	t.Setenv("METEO_WEATHER_API_KEY", "from-env")
	t.Setenv("METEO_SERVER_PORT", "9090")

	path := filepath.Join(t.TempDir(), "meteo.yaml")
	content := `
weather:
  lang: en
  forecast_days: 3
storage:
  driver: memory
location:
  provider: ip
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, "en", cfg.Weather.Lang)
	assert.Equal(t, 3, cfg.Weather.ForecastDays)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "ip", cfg.Location.Provider)
	assert.False(t, cfg.Location.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("METEO_WEATHER_API_KEY", "x")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Weather.APIKey = "k"
	require.NoError(t, Validate(cfg))

	cfg.Storage.Driver = "sqlite"
	assert.ErrorContains(t, Validate(cfg), "Driver")

	cfg = NewDefaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Storage.Driver = "redis"
	assert.ErrorContains(t, Validate(cfg), "RedisURL")

	cfg = NewDefaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Location.Latitude = 120
	assert.ErrorContains(t, Validate(cfg), "Latitude")

	cfg = NewDefaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Storage.Limit = 10
	assert.ErrorContains(t, Validate(cfg), "Limit")
	cfg.Storage.Limit = 5
	assert.NoError(t, Validate(cfg))
}

func TestAtomicConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}
