package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/orchestrator"
	"github.com/Leeky19/meteo/internal/recent"
	"github.com/Leeky19/meteo/internal/server/handlers"
	"github.com/Leeky19/meteo/internal/service"
	"github.com/Leeky19/meteo/internal/session"
	"github.com/Leeky19/meteo/internal/storage"
	"github.com/Leeky19/meteo/internal/weather"
)

type stubSource struct {
	failForecast bool
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) GeocodeCity(ctx context.Context, name string) (weather.Place, error) {
	if name != "Paris" {
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, name)
	}
	return weather.Place{Name: "Paris", Country: "FR", Coordinates: weather.Coordinates{Latitude: 48.8566, Longitude: 2.3522}}, nil
}

func (s *stubSource) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.ForecastResponse, error) {
	if s.failForecast {
		return weather.ForecastResponse{}, fmt.Errorf("%w: upstream down", weather.ErrNetwork)
	}
	return weather.ForecastResponse{
		CityName:    "Paris",
		CountryCode: "FR",
		Coordinates: coords,
		Samples: []weather.Sample{
			{TimestampText: "2024-06-05 09:00:00", TemperatureC: 18, ConditionDescription: "ciel dégagé"},
			{TimestampText: "2024-06-05 12:00:00", TemperatureC: 22, ConditionDescription: "légère pluie"},
			{TimestampText: "2024-06-06 12:00:00", TemperatureC: 20, ConditionDescription: "nuageux"},
		},
	}, nil
}

func (s *stubSource) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Current, error) {
	return weather.Current{
		CityName:    "Paris",
		CountryCode: "FR",
		Coordinates: coords,
		Sample: weather.Sample{
			TimestampText:        "2024-06-05 12:00:00",
			TemperatureC:         21.5,
			WindSpeedMs:          5,
			WindDirectionDeg:     270,
			ConditionMain:        "Rain",
			ConditionDescription: "pluie modérée",
		},
	}, nil
}

func (s *stubSource) FetchTile(ctx context.Context, layer string, z, x, y int) (service.Tile, error) {
	return service.Tile{Data: []byte("png"), ContentType: "image/png"}, nil
}

type testEnv struct {
	handler http.Handler
	source  *stubSource
	recent  *recent.Store
}

func newTestEnv(t *testing.T, checks map[string]handlers.ReadinessCheck) *testEnv {
	t.Helper()
	// Without a client report the server has no position to offer.
	return newTestEnvWithFallback(t, checks, location.Static{Enabled: false})
}

func newTestEnvWithFallback(t *testing.T, checks map[string]handlers.ReadinessCheck, fallback location.Provider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	src := &stubSource{}
	store := recent.NewStore(storage.NewMemory(), recent.DefaultKey, recent.DefaultLimit, logger)

	locator := location.Reported{Fallback: fallback}
	sessions := session.NewRegistry(func() *orchestrator.Orchestrator {
		return orchestrator.New(src, locator, store, 5, logger, nil)
	}, time.Hour, time.Minute, logger)

	srv := NewServer(Dependencies{
		Source:   src,
		Sessions: sessions,
		Recent:   store,
		Metrics:  handlers.NewMetricsHandler(zap.NewNop()),
		Checks:   checks,
	}, logger, nil)
	gin.SetMode(gin.TestMode)

	return &testEnv{handler: srv.Handler(), source: src, recent: store}
}

func (e *testEnv) get(t *testing.T, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSearchFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	sid := session.NewID()

	w := env.get(t, "/v1/forecast/search?city=Paris", sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sid, w.Header().Get("X-Session-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var view weather.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Paris", view.City)
	assert.Len(t, view.Days, 2)
	assert.Len(t, view.Hourly, 2)
	assert.Equal(t, weather.BackgroundClear, view.Theme.Background)
	assert.Equal(t, "2024-06-05 12:00:00", view.Days[0].Representative.TimestampText)

	w = env.get(t, "/v1/forecast/state", sid)
	require.Equal(t, http.StatusOK, w.Code)
	var state handlers.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "ready", state.Phase)
	assert.Equal(t, "Paris", state.Query)
	assert.NotNil(t, state.Forecast)
	assert.Nil(t, state.Error)

	w = env.get(t, "/v1/searches/recent", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"searches":["Paris"]}`, w.Body.String())
}

func TestSearchErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	sid := session.NewID()

	w := env.get(t, "/v1/forecast/search?city=%20%20", sid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "Veuillez entrer un nom de ville", body.Error)

	// Validation failures never start a pipeline.
	w = env.get(t, "/v1/forecast/state", sid)
	assert.Contains(t, w.Body.String(), `"phase":"idle"`)

	w = env.get(t, "/v1/forecast/search?city=Atlantis", sid)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CITY_NOT_FOUND", decodeError(t, w).Code)

	w = env.get(t, "/v1/forecast/state", sid)
	var state handlers.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "failed", state.Phase)
	assert.Nil(t, state.Forecast)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Ville non trouvée. Veuillez vérifier l'orthographe.", state.Error.Error)

	env.source.failForecast = true
	w = env.get(t, "/v1/forecast/search?city=Paris", sid)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "NETWORK_ERROR", decodeError(t, w).Code)
	assert.Empty(t, env.recent.List())
}

func TestLocate(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
	}{
		{"granted with position", "?permission=granted&lat=45.76&lon=4.83", http.StatusOK, ""},
		{"denied", "?permission=denied", http.StatusForbidden, "PERMISSION_DENIED"},
		{"granted without position", "?permission=granted", http.StatusUnprocessableEntity, "LOCATION_UNAVAILABLE"},
		{"no report falls back to server", "", http.StatusForbidden, "PERMISSION_DENIED"},
		{"latitude alone", "?permission=granted&lat=45.76", http.StatusBadRequest, "INVALID_PARAMS"},
		{"latitude out of range", "?permission=granted&lat=95&lon=4.83", http.StatusBadRequest, "INVALID_PARAMS"},
		{"unknown permission", "?permission=maybe", http.StatusBadRequest, "INVALID_PARAMS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.get(t, "/v1/forecast/locate"+tt.query, session.NewID())
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestLocateWithServerFallback(t *testing.T) {
	lyon := weather.Coordinates{Latitude: 45.76, Longitude: 4.83}
	env := newTestEnvWithFallback(t, nil, location.Static{Enabled: true, Coordinates: lyon})

	t.Run("granted without position ignores fallback", func(t *testing.T) {
		w := env.get(t, "/v1/forecast/locate?permission=granted", session.NewID())
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		assert.Equal(t, "LOCATION_UNAVAILABLE", decodeError(t, w).Code)
	})

	t.Run("no report uses fallback", func(t *testing.T) {
		w := env.get(t, "/v1/forecast/locate", session.NewID())
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "Paris")
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, nil)
	a, b := session.NewID(), session.NewID()

	require.Equal(t, http.StatusOK, env.get(t, "/v1/forecast/search?city=Paris", a).Code)
	require.Equal(t, http.StatusNotFound, env.get(t, "/v1/forecast/search?city=Atlantis", b).Code)

	assert.Contains(t, env.get(t, "/v1/forecast/state", a).Body.String(), `"phase":"ready"`)
	assert.Contains(t, env.get(t, "/v1/forecast/state", b).Body.String(), `"phase":"failed"`)
}

func TestMalformedSessionIDIsReplaced(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.get(t, "/v1/forecast/state", "not-a-uuid")
	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get("X-Session-ID")
	assert.NotEqual(t, "not-a-uuid", issued)
	assert.Len(t, issued, 36)
}

func TestCurrent(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.get(t, "/v1/current?lat=48.8566&lon=2.3522", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cur handlers.CurrentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cur))
	assert.Equal(t, "Paris", cur.City)
	assert.InDelta(t, 18.0, cur.WindSpeedKmh, 1e-9)
	assert.Equal(t, 270, cur.WindDirectionDeg)
	assert.Equal(t, weather.Theme{Background: weather.BackgroundRain, Dark: true}, cur.Theme)

	w = env.get(t, "/v1/current?lat=48.8566", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.get(t, "/v1/current?lat=48.8566&lon=190", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "longitude")

	w = env.get(t, "/v1/current?lat=0&lon=0", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrecipitationTile(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.get(t, "/v1/maps/precipitation/3/4/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png", w.Body.String())

	w = env.get(t, "/v1/maps/precipitation/x/4/2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.get(t, "/v1/maps/precipitation/25/4/2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, map[string]handlers.ReadinessCheck{
		"storage": func(ctx context.Context) error { return nil },
	})

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := env.get(t, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	failing := newTestEnv(t, map[string]handlers.ReadinessCheck{
		"storage": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	w := failing.get(t, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	env.get(t, "/v1/forecast/search?city=Paris", "")
	w := env.get(t, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, "http_requests_total"))
	assert.Contains(t, body, `route="/v1/forecast/search"`)
}
