package handlers

import (
	"github.com/Leeky19/meteo/internal/weather"
)

// SearchRequest is left unvalidated here: a blank city is rejected by the orchestrator
// with its own message.
type SearchRequest struct {
	City string `form:"city" json:"city"`
}

// LocateRequest carries what the client knows about its device position. Without a
// permission the server-side location provider answers. Lat and Lon come in pairs.
type LocateRequest struct {
	Permission string   `form:"permission" json:"permission" validate:"omitempty,oneof=granted denied"`
	Lat        *float64 `form:"lat" json:"lat" validate:"omitempty,latitude"`
	Lon        *float64 `form:"lon" json:"lon" validate:"omitempty,longitude"`
}

// CurrentRequest represents the current conditions request with validation
type CurrentRequest struct {
	Lat *float64 `form:"lat" json:"lat" validate:"required,latitude" binding:"required"`
	Lon *float64 `form:"lon" json:"lon" validate:"required,longitude" binding:"required"`
}

// TileRequest addresses one slippy-map tile.
type TileRequest struct {
	Z int `uri:"z" json:"z" validate:"min=0,max=20"`
	X int `uri:"x" json:"x" validate:"min=0"`
	Y int `uri:"y" json:"y" validate:"min=0"`
}

// StateResponse is the session's forecast state. Forecast and Error are mutually
// exclusive.
type StateResponse struct {
	Phase      string         `json:"phase"`
	Generation uint64         `json:"generation"`
	Busy       bool           `json:"busy"`
	Query      string         `json:"query,omitempty"`
	Forecast   *weather.View  `json:"forecast,omitempty"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

// CurrentResponse is the current-conditions card.
type CurrentResponse struct {
	City             string              `json:"city"`
	Country          string              `json:"country"`
	Coordinates      weather.Coordinates `json:"coord"`
	Timestamp        string              `json:"timestamp"`
	TemperatureC     float64             `json:"temperature_c"`
	FeelsLikeC       float64             `json:"feels_like_c"`
	MinTempC         float64             `json:"min_temp_c"`
	MaxTempC         float64             `json:"max_temp_c"`
	HumidityPct      int                 `json:"humidity_pct"`
	WindSpeedKmh     float64             `json:"wind_speed_kmh"`
	WindDirectionDeg int                 `json:"wind_direction_deg"`
	Condition        string              `json:"condition"`
	Description      string              `json:"description"`
	Icon             string              `json:"icon"`
	Theme            weather.Theme       `json:"theme"`
}

// RecentResponse lists recent searches, most recent first.
type RecentResponse struct {
	Searches []string `json:"searches"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string `json:"error" validate:"required,min=1,max=500"`
	Code    string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details string `json:"details,omitempty" validate:"omitempty,max=1000"`
}

// HealthResponse represents health check response with validation
type HealthResponse struct {
	Status    string            `json:"status" validate:"required,oneof=ok alive ready degraded unavailable"`
	Uptime    string            `json:"uptime" validate:"required"`
	Timestamp string            `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Checks    map[string]string `json:"checks,omitempty"`
}
