package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Leeky19/meteo/internal/classifier"
	"github.com/Leeky19/meteo/internal/weather"
)

func printView(w io.Writer, view *weather.View) {
	cur := view.Current
	fmt.Fprintf(w, "%s, %s  (%.4f, %.4f)\n", view.City, view.Country, view.Coordinates.Latitude, view.Coordinates.Longitude)
	fmt.Fprintf(w, "%.1f°C  %s  [%s]\n", cur.TemperatureC, cur.ConditionDescription, view.Theme.Background)
	fmt.Fprintf(w, "Ressenti %.1f°C  Humidité %d%%  Vent %.1f km/h %d°\n\n",
		cur.FeelsLikeC, cur.HumidityPct, cur.WindSpeedKmh(), cur.WindDirectionDeg)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tile := range view.Hourly {
		hour := tile.Sample.TimestampText
		if h, ok := tile.Sample.Hour(); ok {
			hour = fmt.Sprintf("%02dh", h)
		}
		fmt.Fprintf(tw, "%s\t%.1f°C\t%s\n", hour, tile.Sample.TemperatureC, tile.Sample.ConditionDescription)
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, day := range view.Days {
		fmt.Fprintf(tw, "%s\t%.1f°C / %.1f°C\t%s\n",
			day.Date, day.MinTempC, day.MaxTempC, day.Representative.ConditionDescription)
	}
	tw.Flush()
}

func printCurrent(w io.Writer, cur weather.Current) {
	s := cur.Sample
	theme := classifier.ThemeOf(s)
	fmt.Fprintf(w, "%s, %s  %s\n", cur.CityName, cur.CountryCode, s.TimestampText)
	fmt.Fprintf(w, "%.1f°C (min %.1f°C, max %.1f°C)  %s  [%s]\n",
		s.TemperatureC, s.MinTempC, s.MaxTempC, s.ConditionDescription, theme.Background)
	fmt.Fprintf(w, "Ressenti %.1f°C  Humidité %d%%  Vent %.1f km/h %d°\n",
		s.FeelsLikeC, s.HumidityPct, s.WindSpeedKmh(), s.WindDirectionDeg)
}
