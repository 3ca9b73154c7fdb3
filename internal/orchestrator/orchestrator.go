// Package orchestrator runs forecast pipelines: resolve a location, fetch the forecast,
// aggregate it into a view. Only the most recently started pipeline may change state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/aggregator"
	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/service"
	"github.com/Leeky19/meteo/internal/weather"
	"github.com/Leeky19/meteo/pkg/telemetry"
)

// ErrSuperseded is returned by a pipeline whose outcome was discarded because a newer
// pipeline started before it finished.
var ErrSuperseded = errors.New("superseded by a newer request")

// SearchRecorder remembers successfully searched city names.
type SearchRecorder interface {
	Add(ctx context.Context, name string) error
}

type Orchestrator struct {
	source  service.DataSource
	locator location.Provider
	recent  SearchRecorder
	days    int
	logger  *zap.Logger
	tele    *telemetry.Telemetry

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	observers map[int]func(State)
	nextObs   int
}

// New builds an orchestrator. recent may be nil; days <= 0 means aggregator.DefaultDays.
func New(source service.DataSource, locator location.Provider, recent SearchRecorder, days int, logger *zap.Logger, tele *telemetry.Telemetry) *Orchestrator {
	if days <= 0 {
		days = aggregator.DefaultDays
	}
	return &Orchestrator{
		source:    source,
		locator:   locator,
		recent:    recent,
		days:      days,
		logger:    logger,
		tele:      tele,
		observers: make(map[int]func(State)),
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers fn for every applied state change and returns a function that
// removes it. fn runs with the orchestrator locked and must not call back into it.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextObs
	o.nextObs++
	o.observers[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// UseCurrentLocation resolves the device position and loads its forecast.
func (o *Orchestrator) UseCurrentLocation(ctx context.Context) (*weather.View, error) {
	tracer := o.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "orchestrator.UseCurrentLocation")
	defer span.End()

	ctx, gen, cancel := o.begin(ctx, Locating, "")
	defer cancel()
	span.SetAttributes(attribute.Int64("generation", int64(gen)))

	perm, err := o.locator.RequestPermission(ctx)
	if err != nil {
		return nil, o.fail(ctx, gen, classify(err, weather.ErrLocationUnavailable))
	}
	if perm != location.Granted {
		return nil, o.fail(ctx, gen, weather.ErrPermissionDenied)
	}

	coords, err := o.locator.CurrentCoordinates(ctx)
	if err != nil {
		return nil, o.fail(ctx, gen, classify(err, weather.ErrLocationUnavailable))
	}

	if !o.apply(gen, func(s *State) { s.Phase = Fetching }) {
		return nil, ErrSuperseded
	}

	o.logger.Debug("Location resolved",
		zap.Uint64("generation", gen),
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))

	resp, err := o.source.FetchForecast(ctx, coords)
	return o.complete(ctx, gen, "", resp, err)
}

// SearchCity geocodes name and loads its forecast. A blank name fails with
// weather.ErrValidation before any state change or network call.
func (o *Orchestrator) SearchCity(ctx context.Context, name string) (*weather.View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty city name", weather.ErrValidation)
	}

	tracer := o.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "orchestrator.SearchCity")
	defer span.End()

	ctx, gen, cancel := o.begin(ctx, Fetching, name)
	defer cancel()
	span.SetAttributes(
		attribute.String("city", name),
		attribute.Int64("generation", int64(gen)),
	)

	place, err := o.source.GeocodeCity(ctx, name)
	if err != nil {
		return nil, o.fail(ctx, gen, classify(err, weather.ErrNetwork))
	}

	resp, err := o.source.FetchForecast(ctx, place.Coordinates)

	canonical := place.Name
	if canonical == "" {
		canonical = resp.CityName
	}
	return o.complete(ctx, gen, canonical, resp, err)
}

// begin starts a new generation, cancelling the pipeline it supersedes. The previous
// view and error are cleared.
func (o *Orchestrator) begin(ctx context.Context, phase Phase, query string) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.cancel = cancel

	o.state = State{
		Phase:      phase,
		Generation: o.state.Generation + 1,
		Query:      query,
	}
	o.notify()

	return ctx, o.state.Generation, cancel
}

// apply runs fn on the state if gen is still current.
func (o *Orchestrator) apply(gen uint64, fn func(*State)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.state.Generation {
		return false
	}
	fn(&o.state)
	o.notify()
	return true
}

func (o *Orchestrator) notify() {
	for _, fn := range o.observers {
		fn(o.state)
	}
}

func (o *Orchestrator) fail(ctx context.Context, gen uint64, err error) error {
	if !o.apply(gen, func(s *State) {
		s.Phase = Failed
		s.View = nil
		s.Err = err
	}) {
		o.logger.Debug("Discarding superseded failure", zap.Uint64("generation", gen), zap.Error(err))
		return ErrSuperseded
	}

	o.tele.RecordError(ctx, err, map[string]interface{}{"generation": gen})
	o.logger.Info("Forecast pipeline failed",
		zap.Uint64("generation", gen),
		zap.Error(err))
	return err
}

func (o *Orchestrator) complete(ctx context.Context, gen uint64, query string, resp weather.ForecastResponse, err error) (*weather.View, error) {
	if err != nil {
		return nil, o.fail(ctx, gen, classify(err, weather.ErrNetwork))
	}
	if len(resp.Samples) == 0 {
		return nil, o.fail(ctx, gen, fmt.Errorf("%w: forecast has no samples", weather.ErrNetwork))
	}

	view := BuildView(resp, o.days)
	if !o.apply(gen, func(s *State) {
		s.Phase = Ready
		s.View = view
		s.Err = nil
	}) {
		o.logger.Debug("Discarding superseded forecast", zap.Uint64("generation", gen))
		return nil, ErrSuperseded
	}

	o.logger.Info("Forecast ready",
		zap.Uint64("generation", gen),
		zap.String("city", view.City),
		zap.Int("days", len(view.Days)))

	if query != "" && o.recent != nil {
		// The search succeeded; a later supersession must not lose the entry.
		if err := o.recent.Add(context.WithoutCancel(ctx), query); err != nil {
			o.logger.Warn("Failed to record recent search",
				zap.String("city", query),
				zap.Error(err))
		}
	}

	return view, nil
}

var taxonomy = []error{
	weather.ErrPermissionDenied,
	weather.ErrLocationUnavailable,
	weather.ErrCityNotFound,
	weather.ErrValidation,
	weather.ErrNetwork,
}

// classify keeps err if it already belongs to the error taxonomy, otherwise wraps it
// in fallback.
func classify(err, fallback error) error {
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
