package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/weather"
	"github.com/Leeky19/meteo/pkg/telemetry"
)

// DefaultTileLayer is the precipitation overlay shown on the rain map.
const DefaultTileLayer = "precipitation_new"

var ErrUnauthorized = errors.New("API key missing or rejected")

type httpStatusError struct {
	status int
	body   string
}

func (e httpStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("API request failed with status: %d", e.status)
	}
	return fmt.Sprintf("API request failed with status: %d: %s", e.status, e.body)
}

type OpenWeatherMapService struct {
	baseURL string
	geoURL  string
	tileURL string
	apiKey  string
	lang    string
	units   string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	calls   CallRecorder
}

func NewOpenWeatherMapServiceWithConfig(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) *OpenWeatherMapService {
	s := &OpenWeatherMapService{
		baseURL: cfg.BaseURL,
		geoURL:  cfg.GeoURL,
		tileURL: cfg.TileURL,
		apiKey:  cfg.APIKey,
		lang:    cfg.Lang,
		units:   cfg.Units,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger,
		tele:    tele,
	}

	threshold := cfg.Breaker.FailureThreshold
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    time.Duration(cfg.Breaker.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Breaker.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var se httpStatusError
			if errors.As(err, &se) {
				return se.status < http.StatusInternalServerError && se.status != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return s
}

// SetCallRecorder sets the recorder notified of every upstream call.
func (s *OpenWeatherMapService) SetCallRecorder(calls CallRecorder) {
	s.calls = calls
}

func (s *OpenWeatherMapService) Name() string {
	return "openweathermap"
}

func (s *OpenWeatherMapService) GeocodeCity(ctx context.Context, name string) (weather.Place, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.GeocodeCity")
	defer span.End()

	span.SetAttributes(attribute.String("city", name))

	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", "1")

	var results []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := s.getJSON(ctx, s.geoURL+"/direct", q, &results); err != nil {
		return weather.Place{}, err
	}

	if len(results) == 0 {
		span.SetAttributes(attribute.Bool("found", false))
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, name)
	}

	r := results[0]
	span.SetAttributes(attribute.Bool("found", true))

	return weather.Place{
		Name:        r.Name,
		Country:     r.Country,
		Coordinates: weather.Coordinates{Latitude: r.Lat, Longitude: r.Lon},
	}, nil
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type owmCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type owmEntry struct {
	Dt      int64          `json:"dt"`
	DtTxt   string         `json:"dt_txt"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    owmWind        `json:"wind"`
}

func (e owmEntry) sample() weather.Sample {
	s := weather.Sample{
		TimestampText:    e.DtTxt,
		TemperatureC:     e.Main.Temp,
		FeelsLikeC:       e.Main.FeelsLike,
		MinTempC:         e.Main.TempMin,
		MaxTempC:         e.Main.TempMax,
		HumidityPct:      e.Main.Humidity,
		WindSpeedMs:      e.Wind.Speed,
		WindDirectionDeg: e.Wind.Deg,
	}
	if s.TimestampText == "" && e.Dt != 0 {
		s.TimestampText = time.Unix(e.Dt, 0).UTC().Format(weather.SampleTimeLayout)
	}
	if len(e.Weather) > 0 {
		s.ConditionMain = e.Weather[0].Main
		s.ConditionDescription = e.Weather[0].Description
		s.IconCode = e.Weather[0].Icon
	}
	return s
}

func (s *OpenWeatherMapService) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.ForecastResponse, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchForecast")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("lat", coords.Latitude),
		attribute.Float64("lon", coords.Longitude),
	)

	var payload struct {
		City struct {
			Name       string   `json:"name"`
			Country    string   `json:"country"`
			Coord      owmCoord `json:"coord"`
			Population int      `json:"population"`
		} `json:"city"`
		List []owmEntry `json:"list"`
	}
	if err := s.getJSON(ctx, s.baseURL+"/forecast", s.pointQuery(coords), &payload); err != nil {
		return weather.ForecastResponse{}, err
	}

	samples := make([]weather.Sample, 0, len(payload.List))
	for _, e := range payload.List {
		samples = append(samples, e.sample())
	}

	span.SetAttributes(attribute.Int("samples", len(samples)))

	s.logger.Debug("Forecast fetched",
		zap.String("city", payload.City.Name),
		zap.Int("samples", len(samples)))

	return weather.ForecastResponse{
		CityName:    payload.City.Name,
		CountryCode: payload.City.Country,
		Coordinates: weather.Coordinates{Latitude: payload.City.Coord.Lat, Longitude: payload.City.Coord.Lon},
		Population:  payload.City.Population,
		Samples:     samples,
	}, nil
}

func (s *OpenWeatherMapService) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Current, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchCurrent")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("lat", coords.Latitude),
		attribute.Float64("lon", coords.Longitude),
	)

	var payload struct {
		owmEntry
		Name  string   `json:"name"`
		Coord owmCoord `json:"coord"`
		Sys   struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := s.getJSON(ctx, s.baseURL+"/weather", s.pointQuery(coords), &payload); err != nil {
		return weather.Current{}, err
	}

	return weather.Current{
		CityName:    payload.Name,
		CountryCode: payload.Sys.Country,
		Coordinates: weather.Coordinates{Latitude: payload.Coord.Lat, Longitude: payload.Coord.Lon},
		Sample:      payload.sample(),
	}, nil
}

func (s *OpenWeatherMapService) FetchTile(ctx context.Context, layer string, z, x, y int) (Tile, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchTile")
	defer span.End()

	if layer == "" {
		layer = DefaultTileLayer
	}
	span.SetAttributes(
		attribute.String("layer", layer),
		attribute.Int("z", z),
	)

	endpoint := fmt.Sprintf("%s/%s/%d/%d/%d.png", s.tileURL, url.PathEscape(layer), z, x, y)
	body, header, err := s.do(ctx, endpoint, url.Values{})
	if err != nil {
		return Tile{}, err
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return Tile{Data: body, ContentType: contentType}, nil
}

func (s *OpenWeatherMapService) pointQuery(coords weather.Coordinates) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', 6, 64))
	q.Set("units", s.units)
	if s.lang != "" {
		q.Set("lang", s.lang)
	}
	return q
}

func (s *OpenWeatherMapService) getJSON(ctx context.Context, endpoint string, q url.Values, out interface{}) error {
	body, _, err := s.do(ctx, endpoint, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		s.tele.RecordError(ctx, err, map[string]interface{}{"endpoint": endpoint})
		return fmt.Errorf("%w: failed to parse response: %v", weather.ErrNetwork, err)
	}
	return nil
}

// do performs one GET. Every failure is returned as weather.ErrNetwork; auth failures
// additionally wrap ErrUnauthorized.
func (s *OpenWeatherMapService) do(ctx context.Context, endpoint string, q url.Values) ([]byte, http.Header, error) {
	if s.apiKey == "" {
		return nil, nil, fmt.Errorf("%w: %w", weather.ErrNetwork, ErrUnauthorized)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: rate limit wait canceled: %v", weather.ErrNetwork, err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}
	q.Set("appid", s.apiKey)
	u.RawQuery = q.Encode()

	type response struct {
		body   []byte
		header http.Header
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, httpStatusError{status: resp.StatusCode, body: truncate(string(body), 200)}
		}

		return response{body: body, header: resp.Header}, nil
	})

	s.recordCall(ctx, err == nil)

	if err != nil {
		s.logger.Warn("OpenWeatherMap request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		s.tele.RecordError(ctx, err, map[string]interface{}{"endpoint": endpoint})

		var se httpStatusError
		if errors.As(err, &se) && (se.status == http.StatusUnauthorized || se.status == http.StatusForbidden) {
			return nil, nil, fmt.Errorf("%w: %w: %v", weather.ErrNetwork, ErrUnauthorized, err)
		}
		return nil, nil, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}

	r := result.(response)
	return r.body, r.header, nil
}

func (s *OpenWeatherMapService) recordCall(ctx context.Context, success bool) {
	if s.calls != nil {
		s.calls.RecordWeatherServiceCall(ctx, s.Name(), success)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ DataSource = (*OpenWeatherMapService)(nil)
