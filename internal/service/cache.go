package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/weather"
	"github.com/Leeky19/meteo/pkg/telemetry"
)

type cacheEntry[V any] struct {
	value     V
	timestamp time.Time
}

type ttlCache[V any] struct {
	mutex   sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

func newTTLCache[V any](ttl time.Duration, now func() time.Time) *ttlCache[V] {
	return &ttlCache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// get never deletes; expired entries are dropped by purge.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.timestamp) > c.ttl {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, timestamp: c.now()}
}

func (c *ttlCache[V]) purge() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.now().Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *ttlCache[V]) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]cacheEntry[V])
}

func (c *ttlCache[V]) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// CachedSource memoizes geocoding, forecast and current-conditions lookups for a
// fixed TTL. Failures are never cached. Tiles pass straight through.
type CachedSource struct {
	source    DataSource
	places    *ttlCache[weather.Place]
	forecasts *ttlCache[weather.ForecastResponse]
	currents  *ttlCache[weather.Current]
	cacheTTL  time.Duration
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   MetricsRecorder
}

func NewCachedSource(source DataSource, ttl time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *CachedSource {
	return newCachedSource(source, ttl, time.Now, logger, tele)
}

func newCachedSource(source DataSource, ttl time.Duration, now func() time.Time, logger *zap.Logger, tele *telemetry.Telemetry) *CachedSource {
	return &CachedSource{
		source:    source,
		places:    newTTLCache[weather.Place](ttl, now),
		forecasts: newTTLCache[weather.ForecastResponse](ttl, now),
		currents:  newTTLCache[weather.Current](ttl, now),
		cacheTTL:  ttl,
		logger:    logger,
		tele:      tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the cache
func (c *CachedSource) SetMetricsRecorder(metrics MetricsRecorder) {
	c.metrics = metrics
}

func (c *CachedSource) Name() string {
	return c.source.Name()
}

func coordsKey(coords weather.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", coords.Latitude, coords.Longitude)
}

func (c *CachedSource) GeocodeCity(ctx context.Context, name string) (weather.Place, error) {
	return lookup(ctx, c, c.places, "geocode", strings.ToLower(strings.TrimSpace(name)), func(ctx context.Context) (weather.Place, error) {
		return c.source.GeocodeCity(ctx, name)
	})
}

func (c *CachedSource) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.ForecastResponse, error) {
	return lookup(ctx, c, c.forecasts, "forecast", coordsKey(coords), func(ctx context.Context) (weather.ForecastResponse, error) {
		return c.source.FetchForecast(ctx, coords)
	})
}

func (c *CachedSource) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Current, error) {
	return lookup(ctx, c, c.currents, "current", coordsKey(coords), func(ctx context.Context) (weather.Current, error) {
		return c.source.FetchCurrent(ctx, coords)
	})
}

func (c *CachedSource) FetchTile(ctx context.Context, layer string, z, x, y int) (Tile, error) {
	return c.source.FetchTile(ctx, layer, z, x, y)
}

func lookup[V any](ctx context.Context, c *CachedSource, cache *ttlCache[V], cacheType, key string, fetch func(context.Context) (V, error)) (V, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "cache."+cacheType)
	defer span.End()

	if value, ok := cache.get(key); ok {
		c.logger.Debug("Cache hit",
			zap.String("cache", cacheType),
			zap.String("cache_key", key))
		span.SetAttributes(attribute.Bool("cache_hit", true))
		if c.metrics != nil {
			c.metrics.RecordCacheHit(ctx, cacheType)
		}
		return value, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", false))
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, cacheType)
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	cache.set(key, value)
	return value, nil
}

// PurgeExpired drops expired entries and returns how many were removed.
func (c *CachedSource) PurgeExpired() int {
	removed := c.places.purge() + c.forecasts.purge() + c.currents.purge()
	if removed > 0 {
		c.logger.Debug("Purged expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

func (c *CachedSource) ClearCache() {
	c.places.clear()
	c.forecasts.clear()
	c.currents.clear()
}

func (c *CachedSource) GetCacheStats() map[string]interface{} {
	return map[string]interface{}{
		"cache_size": c.places.size() + c.forecasts.size() + c.currents.size(),
		"places":     c.places.size(),
		"forecasts":  c.forecasts.size(),
		"currents":   c.currents.size(),
		"cache_ttl":  c.cacheTTL.String(),
		"source":     c.source.Name(),
	}
}

var _ DataSource = (*CachedSource)(nil)
