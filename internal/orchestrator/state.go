package orchestrator

import (
	"github.com/Leeky19/meteo/internal/weather"
)

type Phase int

const (
	Idle Phase = iota
	Locating
	Fetching
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Locating:
		return "locating"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the most recently started pipeline. View and Err are never
// both set.
type State struct {
	Phase      Phase
	Generation uint64
	// Query is the searched city name, empty on the current-location path.
	Query string
	View  *weather.View
	Err   error
}

// Busy reports whether a pipeline is in flight.
func (s State) Busy() bool {
	return s.Phase == Locating || s.Phase == Fetching
}

// Message is the user-facing error text, empty unless the pipeline failed.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	return weather.Message(s.Err)
}
