package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/weather"
)

// IPLookup approximates the position from the public IP address (ip-api.com JSON format).
type IPLookup struct {
	enabled bool
	url     string
	client  *http.Client
	logger  *zap.Logger
}

func NewIPLookup(enabled bool, url string, timeout time.Duration, logger *zap.Logger) *IPLookup {
	return &IPLookup{
		enabled: enabled,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (p *IPLookup) RequestPermission(ctx context.Context) (Permission, error) {
	if !p.enabled {
		return Denied, nil
	}
	return Granted, nil
}

func (p *IPLookup) CurrentCoordinates(ctx context.Context) (weather.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("IP geolocation request failed", zap.Error(err))
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Coordinates{}, fmt.Errorf("%w: lookup returned status %d", weather.ErrLocationUnavailable, resp.StatusCode)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}
	if payload.Status != "success" {
		return weather.Coordinates{}, fmt.Errorf("%w: lookup failed: %s", weather.ErrLocationUnavailable, payload.Message)
	}

	p.logger.Debug("Resolved position from IP",
		zap.Float64("lat", payload.Lat),
		zap.Float64("lon", payload.Lon))

	return weather.Coordinates{Latitude: payload.Lat, Longitude: payload.Lon}, nil
}

var _ Provider = (*IPLookup)(nil)
