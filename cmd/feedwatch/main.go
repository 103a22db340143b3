package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/feedwatch/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "feedwatch",
		Short: "Pricing feed status monitor",
		Long: `feedwatch derives the daily status of pricing feeds (PRICED, DELAYED,
IN_PROGRESS, PENDING, ERROR) from the run records of the jobs that load them,
serves it over HTTP and alerts when a feed misses its expected time.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
		commands.NewFeedsCmd(),
		commands.NewCalendarCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
