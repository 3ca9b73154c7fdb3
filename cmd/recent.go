package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Leeky19/meteo/internal/config"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent city searches",
	RunE:  runRecent,
}

func runRecent(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), config.GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	searches := a.recent.List()
	if len(searches) == 0 {
		fmt.Fprintln(out, "Aucune recherche récente")
		return nil
	}
	for i, name := range searches {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)
	}
	return nil
}
