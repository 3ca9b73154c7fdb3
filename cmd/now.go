package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/weather"
)

var (
	nowCity string
	nowLat  float64
	nowLon  float64
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Show current conditions",
	Long:  `Show current conditions for --city, for --lat/--lon, or at the position of the configured location provider.`,
	RunE:  runNow,
}

func init() {
	nowCmd.Flags().StringVar(&nowCity, "city", "", "city name")
	nowCmd.Flags().Float64Var(&nowLat, "lat", 0, "latitude of the position")
	nowCmd.Flags().Float64Var(&nowLon, "lon", 0, "longitude of the position")
	nowCmd.MarkFlagsRequiredTogether("lat", "lon")
	nowCmd.MarkFlagsMutuallyExclusive("city", "lat")
}

func runNow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), config.GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	var coords weather.Coordinates
	switch {
	case cmd.Flags().Changed("city"):
		name := strings.TrimSpace(nowCity)
		if name == "" {
			return failure(a, fmt.Errorf("%w: empty city name", weather.ErrValidation))
		}
		place, err := a.source.GeocodeCity(ctx, name)
		if err != nil {
			return failure(a, err)
		}
		coords = place.Coordinates
	case cmd.Flags().Changed("lat"):
		coords = weather.Coordinates{Latitude: nowLat, Longitude: nowLon}
	default:
		perm, err := a.locator.RequestPermission(ctx)
		if err == nil && perm != location.Granted {
			err = weather.ErrPermissionDenied
		}
		if err != nil {
			return failure(a, err)
		}
		coords, err = a.locator.CurrentCoordinates(ctx)
		if err != nil {
			return failure(a, err)
		}
	}

	cur, err := a.source.FetchCurrent(ctx, coords)
	if err != nil {
		return failure(a, err)
	}

	printCurrent(cmd.OutOrStdout(), cur)
	return nil
}
