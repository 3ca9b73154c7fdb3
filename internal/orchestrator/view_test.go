package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leeky19/meteo/internal/weather"
)

func TestBuildView(t *testing.T) {
	resp := sampleForecast()

	view := BuildView(resp, 5)
	require.NotNil(t, view)

	assert.Equal(t, "Paris", view.City)
	assert.Equal(t, "FR", view.Country)
	assert.Equal(t, 2138551, view.Population)
	assert.Equal(t, resp.Samples[0], view.Current)
	assert.Equal(t, weather.Theme{Background: weather.BackgroundCloud, Dark: true}, view.Theme)

	require.Len(t, view.Days, 5)
	assert.Equal(t, "2024-06-01", view.Days[0].Date)
	assert.Equal(t, "2024-06-01 12:00:00", view.Days[0].Representative.TimestampText)

	require.Len(t, view.Hourly, 4)
	assert.Equal(t, weather.BackgroundRain, view.Hourly[1].Theme.Background)
	assert.Equal(t, weather.BackgroundCloud, view.Hourly[2].Theme.Background)
}

func TestBuildViewFewerDaysThanLimit(t *testing.T) {
	resp := weather.ForecastResponse{
		CityName: "Nice",
		Samples: []weather.Sample{
			{TimestampText: "2024-06-05 21:00:00", ConditionDescription: "ciel dégagé"},
			{TimestampText: "2024-06-06 00:00:00", ConditionDescription: "ciel dégagé"},
		},
	}

	view := BuildView(resp, 5)
	assert.Len(t, view.Days, 2)
	assert.Len(t, view.Hourly, 1)
	assert.Equal(t, weather.Theme{Background: weather.BackgroundClear, Dark: false}, view.Theme)
}
