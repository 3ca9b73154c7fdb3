package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Leeky19/meteo/internal/config"
)

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Show the forecast of a city",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), config.GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.newOrchestrator(a.locator).SearchCity(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return failure(a, err)
	}

	printView(cmd.OutOrStdout(), view)
	return nil
}
