package location

import (
	"context"

	"github.com/Leeky19/meteo/internal/weather"
)

// Report is what a remote client knows about its own device: whether the user granted
// location access and, if so, the fix it obtained.
type Report struct {
	Permission  Permission
	Coordinates *weather.Coordinates
}

type reportKey struct{}

func WithReport(ctx context.Context, r Report) context.Context {
	return context.WithValue(ctx, reportKey{}, r)
}

func ReportFrom(ctx context.Context) (Report, bool) {
	r, ok := ctx.Value(reportKey{}).(Report)
	return r, ok
}

// Reported answers from the Report attached to the context and delegates to Fallback
// when the caller did not attach one.
type Reported struct {
	Fallback Provider
}

func (p Reported) RequestPermission(ctx context.Context) (Permission, error) {
	if r, ok := ReportFrom(ctx); ok {
		return r.Permission, nil
	}
	if p.Fallback == nil {
		return Denied, nil
	}
	return p.Fallback.RequestPermission(ctx)
}

// CurrentCoordinates never substitutes the fallback's position for a client that
// reported without a fix.
func (p Reported) CurrentCoordinates(ctx context.Context) (weather.Coordinates, error) {
	if r, ok := ReportFrom(ctx); ok {
		if r.Coordinates == nil {
			return weather.Coordinates{}, weather.ErrLocationUnavailable
		}
		return *r.Coordinates, nil
	}
	if p.Fallback == nil {
		return weather.Coordinates{}, weather.ErrLocationUnavailable
	}
	return p.Fallback.CurrentCoordinates(ctx)
}

var _ Provider = Reported{}
