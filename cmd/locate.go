package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/weather"
)

var (
	locateLat float64
	locateLon float64
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the forecast at the current position",
	Long:  `Show the forecast at the position given by --lat/--lon, or at the one of the configured location provider.`,
	RunE:  runLocate,
}

func init() {
	locateCmd.Flags().Float64Var(&locateLat, "lat", 0, "latitude of the position")
	locateCmd.Flags().Float64Var(&locateLon, "lon", 0, "longitude of the position")
	locateCmd.MarkFlagsRequiredTogether("lat", "lon")
}

func runLocate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), config.GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if cmd.Flags().Changed("lat") {
		ctx = location.WithReport(ctx, location.Report{
			Permission:  location.Granted,
			Coordinates: &weather.Coordinates{Latitude: locateLat, Longitude: locateLon},
		})
	}

	orch := a.newOrchestrator(location.Reported{Fallback: a.locator})
	view, err := orch.UseCurrentLocation(ctx)
	if err != nil {
		return failure(a, err)
	}

	printView(cmd.OutOrStdout(), view)
	return nil
}
