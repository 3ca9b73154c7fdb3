// Package location abstracts the device position: a permission check followed by a fix.
package location

import (
	"context"

	"github.com/Leeky19/meteo/internal/weather"
)

type Permission int

const (
	Denied Permission = iota
	Granted
)

func (p Permission) String() string {
	if p == Granted {
		return "granted"
	}
	return "denied"
}

// ParsePermission accepts "granted" and "denied"; anything else is denied.
func ParsePermission(s string) Permission {
	if s == "granted" {
		return Granted
	}
	return Denied
}

type Provider interface {
	RequestPermission(ctx context.Context) (Permission, error)
	// CurrentCoordinates fails with weather.ErrLocationUnavailable when no fix can be produced.
	CurrentCoordinates(ctx context.Context) (weather.Coordinates, error)
}

// Static serves a configured position. A disabled Static provider behaves like a user
// who refused the location permission.
type Static struct {
	Enabled     bool
	Coordinates weather.Coordinates
}

func (s Static) RequestPermission(ctx context.Context) (Permission, error) {
	if !s.Enabled {
		return Denied, nil
	}
	return Granted, nil
}

func (s Static) CurrentCoordinates(ctx context.Context) (weather.Coordinates, error) {
	if s.Coordinates.IsZero() {
		return weather.Coordinates{}, weather.ErrLocationUnavailable
	}
	return s.Coordinates, nil
}

var _ Provider = Static{}
