package service

import (
	"context"

	"github.com/Leeky19/meteo/internal/weather"
)

// DataSource is the forecast and geocoding API as seen by the forecast pipeline.
type DataSource interface {
	// GeocodeCity resolves name verbatim; no match yields weather.ErrCityNotFound.
	GeocodeCity(ctx context.Context, name string) (weather.Place, error)
	FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.ForecastResponse, error)
	FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Current, error)
	FetchTile(ctx context.Context, layer string, z, x, y int) (Tile, error)
	Name() string
}

// Tile is a map overlay image.
type Tile struct {
	Data        []byte
	ContentType string
}

// CallRecorder receives one event per upstream request.
type CallRecorder interface {
	RecordWeatherServiceCall(ctx context.Context, service string, success bool)
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordCacheHit(ctx context.Context, cacheType string)
	RecordCacheMiss(ctx context.Context, cacheType string)
}
