package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:   "gridpulse",
		Short: "Electricity price reconstruction, spike detection and bid settlement",
	}
	root.AddCommand(reconstructCmd())
	root.AddCommand(spikesCmd())
	root.AddCommand(settleCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
