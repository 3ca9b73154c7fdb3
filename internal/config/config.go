package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Location    LocationConfig  `mapstructure:"location"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Session     SessionConfig   `mapstructure:"session"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

type WeatherConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	GeoURL       string        `mapstructure:"geo_url" validate:"required,url"`
	TileURL      string        `mapstructure:"tile_url" validate:"required,url"`
	APIKey       string        `mapstructure:"api_key" validate:"required"`
	Lang         string        `mapstructure:"lang"`
	Units        string        `mapstructure:"units" validate:"oneof=metric imperial standard"`
	Timeout      int           `mapstructure:"timeout" validate:"min=1"`
	CacheTTL     int           `mapstructure:"cache_ttl" validate:"min=0"`
	ForecastDays int           `mapstructure:"forecast_days" validate:"min=1"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst    int           `mapstructure:"rate_burst" validate:"min=1"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32 `mapstructure:"max_requests"`
	Interval         int    `mapstructure:"interval"`
	Timeout          int    `mapstructure:"timeout"`
	FailureThreshold uint32 `mapstructure:"failure_threshold" validate:"min=1"`
}

type LocationConfig struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=static ip"`
	Enabled     bool    `mapstructure:"enabled"`
	Latitude    float64 `mapstructure:"latitude" validate:"latitude"`
	Longitude   float64 `mapstructure:"longitude" validate:"longitude"`
	IPLookupURL string  `mapstructure:"ip_lookup_url" validate:"required_if=Provider ip"`
	Timeout     int     `mapstructure:"timeout" validate:"min=1"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=memory file redis"`
	Path     string `mapstructure:"path" validate:"required_if=Driver file"`
	RedisURL string `mapstructure:"redis_url" validate:"required_if=Driver redis"`
	Prefix   string `mapstructure:"prefix"`
	Key      string `mapstructure:"key" validate:"required"`
	Limit    int    `mapstructure:"limit" validate:"min=1,max=5"`
}

type SessionConfig struct {
	TTL           int `mapstructure:"ttl" validate:"min=1"`
	SweepInterval int `mapstructure:"sweep_interval" validate:"min=1"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			BaseURL:      "https://api.openweathermap.org/data/2.5",
			GeoURL:       "https://api.openweathermap.org/geo/1.0",
			TileURL:      "https://tile.openweathermap.org/map",
			APIKey:       "",
			Lang:         "fr",
			Units:        "metric",
			Timeout:      10,
			CacheTTL:     300,
			ForecastDays: 5,
			RateLimit:    1,
			RateBurst:    5,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         60,
				Timeout:          30,
				FailureThreshold: 5,
			},
		},
		Location: LocationConfig{
			Provider: "static",
			Enabled:  true,
			// Centre of France.
			Latitude:    46.603354,
			Longitude:   1.888334,
			IPLookupURL: "http://ip-api.com/json/",
			Timeout:     5,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "./data/meteo.json",
			Prefix: "meteo:",
			Key:    "recent_searches",
			Limit:  5,
		},
		Session: SessionConfig{
			TTL:           1800,
			SweepInterval: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "meteo",
		},
	}
}
