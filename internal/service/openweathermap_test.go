package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/weather"
)

const forecastBody = `{
  "city": {"name": "Paris", "country": "FR", "coord": {"lat": 48.8566, "lon": 2.3522}, "population": 2138551},
  "list": [
    {"dt": 1717588800, "dt_txt": "2024-06-05 12:00:00",
     "main": {"temp": 21.5, "feels_like": 21.0, "temp_min": 19.2, "temp_max": 22.8, "humidity": 55},
     "weather": [{"main": "Clouds", "description": "nuageux", "icon": "04d"}],
     "wind": {"speed": 3.5, "deg": 240}},
    {"dt": 1717599600, "dt_txt": "2024-06-05 15:00:00",
     "main": {"temp": 23.1, "feels_like": 22.9, "temp_min": 23.1, "temp_max": 23.1, "humidity": 48},
     "weather": [{"main": "Rain", "description": "légère pluie", "icon": "10d"}],
     "wind": {"speed": 4.1, "deg": 250}}
  ]
}`

type recordedCalls struct {
	ok, failed atomic.Int32
}

func (r *recordedCalls) RecordWeatherServiceCall(ctx context.Context, service string, success bool) {
	if success {
		r.ok.Add(1)
	} else {
		r.failed.Add(1)
	}
}

func newTestService(t *testing.T, handler http.Handler) *OpenWeatherMapService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig().Weather
	cfg.BaseURL = srv.URL + "/data/2.5"
	cfg.GeoURL = srv.URL + "/geo/1.0"
	cfg.TileURL = srv.URL + "/map"
	cfg.APIKey = "test-key"
	cfg.RateLimit = 1000
	cfg.RateBurst = 100

	return NewOpenWeatherMapServiceWithConfig(cfg, zaptest.NewLogger(t), nil)
}

func TestGeocodeCity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("q") == "Paris" {
			w.Write([]byte(`[{"name":"Paris","country":"FR","lat":48.8566,"lon":2.3522}]`))
			return
		}
		w.Write([]byte(`[]`))
	})
	svc := newTestService(t, mux)

	place, err := svc.GeocodeCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", place.Name)
	assert.Equal(t, "FR", place.Country)
	assert.InDelta(t, 48.8566, place.Coordinates.Latitude, 1e-9)

	_, err = svc.GeocodeCity(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestFetchForecast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "fr", q.Get("lang"))
		assert.Equal(t, "48.856600", q.Get("lat"))
		w.Write([]byte(forecastBody))
	})
	svc := newTestService(t, mux)

	resp, err := svc.FetchForecast(context.Background(), weather.Coordinates{Latitude: 48.8566, Longitude: 2.3522})
	require.NoError(t, err)
	assert.Equal(t, "Paris", resp.CityName)
	assert.Equal(t, "FR", resp.CountryCode)
	assert.Equal(t, 2138551, resp.Population)
	require.Len(t, resp.Samples, 2)

	first := resp.Samples[0]
	assert.Equal(t, "2024-06-05 12:00:00", first.TimestampText)
	assert.Equal(t, 21.5, first.TemperatureC)
	assert.Equal(t, 55, first.HumidityPct)
	assert.Equal(t, "Clouds", first.ConditionMain)
	assert.Equal(t, "nuageux", first.ConditionDescription)
	assert.Equal(t, "04d", first.IconCode)
	assert.Equal(t, 240, first.WindDirectionDeg)
}

func TestFetchCurrent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Lyon","coord":{"lat":45.76,"lon":4.83},"sys":{"country":"FR"},"dt":1717588800,
			"main":{"temp":18.0,"feels_like":17.5,"temp_min":16.0,"temp_max":19.0,"humidity":70},
			"weather":[{"main":"Clear","description":"ciel dégagé","icon":"01d"}],"wind":{"speed":2.0,"deg":90}}`))
	})
	svc := newTestService(t, mux)

	cur, err := svc.FetchCurrent(context.Background(), weather.Coordinates{Latitude: 45.76, Longitude: 4.83})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", cur.CityName)
	assert.Equal(t, "FR", cur.CountryCode)
	assert.Equal(t, "2024-06-05 12:00:00", cur.Sample.TimestampText)
	assert.Equal(t, "ciel dégagé", cur.Sample.ConditionDescription)
	assert.InDelta(t, 7.2, cur.Sample.WindSpeedKmh(), 1e-9)
}

func TestFetchTile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/map/precipitation_new/3/4/2.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	svc := newTestService(t, mux)

	tile, err := svc.FetchTile(context.Background(), "", 3, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "image/png", tile.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, tile.Data)
}

func TestUpstreamFailuresAreNetworkErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	})
	svc := newTestService(t, mux)
	calls := &recordedCalls{}
	svc.SetCallRecorder(calls)

	_, err := svc.FetchForecast(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 2})
	assert.ErrorIs(t, err, weather.ErrNetwork)

	_, err = svc.FetchCurrent(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 2})
	assert.ErrorIs(t, err, weather.ErrNetwork)

	_, err = svc.GeocodeCity(context.Background(), "Paris")
	assert.ErrorIs(t, err, weather.ErrNetwork)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, int32(1), calls.ok.Load())
	assert.Equal(t, int32(2), calls.failed.Load())
}

func TestMissingAPIKey(t *testing.T) {
	var hits atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	svc.apiKey = ""

	_, err := svc.FetchForecast(context.Background(), weather.Coordinates{})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.ErrorIs(t, err, weather.ErrNetwork)
	assert.Zero(t, hits.Load())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 8; i++ {
		_, err := svc.FetchForecast(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 1})
		require.ErrorIs(t, err, weather.ErrNetwork)
	}

	// Default threshold is five consecutive failures.
	assert.Equal(t, int32(5), hits.Load())
}

func TestClientErrorsDoNotOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	for i := 0; i < 8; i++ {
		_, err := svc.FetchForecast(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 1})
		require.ErrorIs(t, err, weather.ErrNetwork)
	}
	assert.Equal(t, int32(8), hits.Load())
}
