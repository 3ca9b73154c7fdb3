package orchestrator

import (
	"github.com/Leeky19/meteo/internal/aggregator"
	"github.com/Leeky19/meteo/internal/classifier"
	"github.com/Leeky19/meteo/internal/weather"
)

// BuildView turns a forecast into what a client renders. resp must hold at least one
// sample.
func BuildView(resp weather.ForecastResponse, days int) *weather.View {
	first := resp.Samples[0]
	buckets := aggregator.Limit(aggregator.GroupByDay(resp.Samples), days)

	var hourly []weather.HourlyTile
	if len(buckets) > 0 {
		hourly = make([]weather.HourlyTile, 0, len(buckets[0].Samples))
		for _, s := range buckets[0].Samples {
			hourly = append(hourly, weather.HourlyTile{Sample: s, Theme: classifier.ThemeOf(s)})
		}
	}

	return &weather.View{
		City:        resp.CityName,
		Country:     resp.CountryCode,
		Coordinates: resp.Coordinates,
		Population:  resp.Population,
		Theme:       classifier.ThemeOf(first),
		Current:     first,
		Hourly:      hourly,
		Days:        buckets,
	}
}
