package main

import (
	"os"

	"github.com/Leeky19/meteo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
