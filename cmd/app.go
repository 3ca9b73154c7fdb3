package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/orchestrator"
	"github.com/Leeky19/meteo/internal/recent"
	"github.com/Leeky19/meteo/internal/server/handlers"
	"github.com/Leeky19/meteo/internal/service"
	"github.com/Leeky19/meteo/internal/storage"
	"github.com/Leeky19/meteo/internal/weather"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      storage.KV
	recent  *recent.Store
	source  *service.CachedSource
	locator location.Provider
	metrics *handlers.MetricsHandler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	zl := log.Logger

	kv, err := newKV(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	store := recent.NewStore(kv, cfg.Storage.Key, cfg.Storage.Limit, zl)
	if err := store.Load(ctx); err != nil {
		// Recent searches are a convenience; start with an empty list.
		zl.Warn("Failed to load recent searches", zap.Error(err))
	}

	metrics := handlers.NewMetricsHandler(zl)

	owm := service.NewOpenWeatherMapServiceWithConfig(cfg.Weather, zl, tele)
	owm.SetCallRecorder(metrics)

	source := service.NewCachedSource(owm, time.Duration(cfg.Weather.CacheTTL)*time.Second, zl, tele)
	source.SetMetricsRecorder(metrics)

	return &app{
		cfg:     cfg,
		logger:  zl,
		kv:      kv,
		recent:  store,
		source:  source,
		locator: newLocator(cfg.Location, zl),
		metrics: metrics,
	}, nil
}

func newKV(ctx context.Context, cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemory(), nil
	case "redis":
		kv, err := storage.NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrStorage, err)
		}
		return kv, nil
	default:
		kv, err := storage.NewFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrStorage, err)
		}
		return kv, nil
	}
}

func newLocator(cfg config.LocationConfig, logger *zap.Logger) location.Provider {
	if cfg.Provider == "ip" {
		return location.NewIPLookup(cfg.Enabled, cfg.IPLookupURL, time.Duration(cfg.Timeout)*time.Second, logger)
	}
	return location.Static{
		Enabled:     cfg.Enabled,
		Coordinates: weather.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
	}
}

// newOrchestrator builds a pipeline runner using locator for device positions.
func (a *app) newOrchestrator(locator location.Provider) *orchestrator.Orchestrator {
	return orchestrator.New(a.source, locator, a.recent, a.cfg.Weather.ForecastDays, a.logger, tele)
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("Failed to close storage", zap.Error(err))
	}
}

// failure prints the user-facing message of err and returns err for the exit status.
func failure(a *app, err error) error {
	if errors.Is(err, weather.ErrValidation) || errors.Is(err, weather.ErrCityNotFound) {
		a.logger.Debug("Command rejected", zap.Error(err))
	} else {
		a.logger.Error("Command failed", zap.Error(err))
	}
	return errors.New(weather.Message(err))
}
