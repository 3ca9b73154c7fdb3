// Package classifier maps weather condition text to a display theme.
package classifier

import (
	"strings"

	"github.com/Leeky19/meteo/internal/weather"
)

type group struct {
	background weather.Background
	keywords   []string
}

// Order matters: the first group with a matching keyword wins. Shower keywords sit in
// the rain group, so mixed precipitation such as "averses de neige" reads as rain.
var groups = []group{
	{weather.BackgroundRain, []string{"pluie", "averse", "bruine", "rain", "drizzle", "shower"}},
	{weather.BackgroundSnow, []string{"neige", "grésil", "snow", "sleet"}},
	{weather.BackgroundStorm, []string{"orage", "storm"}},
	{weather.BackgroundFog, []string{"brouillard", "brume", "mist", "fog", "haze"}},
	{weather.BackgroundCloud, []string{"nuage", "nuageux", "couvert", "cloud", "overcast"}},
	{weather.BackgroundSpecial, []string{"sable", "cendre", "tornade", "poussière", "fumée", "sand", "ash", "tornado", "dust", "smoke"}},
}

// Classify returns the theme for a lower-cased description. conditionMain is only
// consulted when description is empty.
func Classify(description, conditionMain string) weather.Theme {
	text := description
	if text == "" {
		text = strings.ToLower(conditionMain)
	}

	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(text, kw) {
				return weather.Theme{Background: g.background, Dark: true}
			}
		}
	}

	return weather.Theme{Background: weather.BackgroundClear, Dark: false}
}

// ThemeOf classifies a raw sample.
func ThemeOf(s weather.Sample) weather.Theme {
	return Classify(strings.ToLower(s.ConditionDescription), s.ConditionMain)
}
