package weather

import (
	"strings"
	"time"
)

// SampleTimeLayout is the layout of Sample.TimestampText as sent by the forecast API.
const SampleTimeLayout = "2006-01-02 15:04:05"

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// IsZero reports whether no position was ever set.
func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// Place is a geocoding match. Name is the canonical name returned by the API.
type Place struct {
	Name        string      `json:"name"`
	Country     string      `json:"country,omitempty"`
	Coordinates Coordinates `json:"coord"`
}

// Sample is one timestamped observation, copied verbatim from the upstream payload.
type Sample struct {
	TimestampText        string  `json:"dt_txt"`
	TemperatureC         float64 `json:"temp"`
	FeelsLikeC           float64 `json:"feels_like"`
	MinTempC             float64 `json:"temp_min"`
	MaxTempC             float64 `json:"temp_max"`
	HumidityPct          int     `json:"humidity"`
	WindSpeedMs          float64 `json:"wind_speed"`
	WindDirectionDeg     int     `json:"wind_deg"`
	ConditionMain        string  `json:"main"`
	ConditionDescription string  `json:"description"`
	IconCode             string  `json:"icon"`
}

// Date returns the calendar date part of the timestamp (text before the first space).
func (s Sample) Date() string {
	date, _, _ := strings.Cut(s.TimestampText, " ")
	return date
}

// Hour returns the hour of day of the sample; ok is false when the timestamp is malformed.
func (s Sample) Hour() (hour int, ok bool) {
	t, err := time.Parse(SampleTimeLayout, s.TimestampText)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}

// WindSpeedKmh converts the wind speed for display.
func (s Sample) WindSpeedKmh() float64 {
	return s.WindSpeedMs * 3.6
}

type ForecastResponse struct {
	CityName    string      `json:"city"`
	CountryCode string      `json:"country"`
	Coordinates Coordinates `json:"coord"`
	Population  int         `json:"population,omitempty"`
	Samples     []Sample    `json:"samples"`
}

// Current is the single-point "current conditions" variant of the forecast payload.
type Current struct {
	CityName    string      `json:"city"`
	CountryCode string      `json:"country"`
	Coordinates Coordinates `json:"coord"`
	Sample      Sample      `json:"sample"`
}

type DayBucket struct {
	Date           string   `json:"date"`
	Samples        []Sample `json:"samples"`
	Representative Sample   `json:"representative"`
	MinTempC       float64  `json:"min_temp"`
	MaxTempC       float64  `json:"max_temp"`
}

type Background string

const (
	BackgroundClear   Background = "clear"
	BackgroundRain    Background = "rain"
	BackgroundSnow    Background = "snow"
	BackgroundStorm   Background = "storm"
	BackgroundFog     Background = "fog"
	BackgroundCloud   Background = "cloud"
	BackgroundSpecial Background = "special"
)

// Theme drives the background image and the text contrast of a forecast display.
type Theme struct {
	Background Background `json:"background"`
	Dark       bool       `json:"dark"`
}

// HourlyTile is one sample of the current day with its own theme.
type HourlyTile struct {
	Sample Sample `json:"sample"`
	Theme  Theme  `json:"theme"`
}

// View is the consolidated result handed to the presentation layer.
type View struct {
	City        string       `json:"city"`
	Country     string       `json:"country"`
	Coordinates Coordinates  `json:"coord"`
	Population  int          `json:"population,omitempty"`
	Theme       Theme        `json:"theme"`
	Current     Sample       `json:"current"`
	Hourly      []HourlyTile `json:"hourly"`
	Days        []DayBucket  `json:"days"`
}
