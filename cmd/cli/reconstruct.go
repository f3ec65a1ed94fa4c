package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gridpulse/internal/data"
	"gridpulse/internal/model"
	"gridpulse/internal/reconstruct"
)

func reconstructCmd() *cobra.Command {
	var (
		daPath   string
		rtPath   string
		date     string
		sourceTZ string
		targetTZ string
	)
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct a complete 24-hour price day from raw feed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDate, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
			}

			var rawDA, rawRT []model.RawPriceRecord
			if daPath != "" {
				if rawDA, err = data.LoadRawRecords(daPath); err != nil {
					return fmt.Errorf("load day-ahead feed: %w", err)
				}
			}
			if rtPath != "" {
				if rawRT, err = data.LoadRawRecords(rtPath); err != nil {
					return fmt.Errorf("load real-time feed: %w", err)
				}
			}

			result, err := reconstruct.Reconstruct(rawDA, rawRT, sourceTZ, targetTZ, targetDate)
			if err != nil {
				return err
			}

			log.Info().
				Int("actual", len(result.Metadata.ActualHours)).
				Int("interpolated", len(result.Metadata.InterpolatedHours)).
				Int("fallback", len(result.Metadata.FallbackHours)).
				Msg("reconstructed")

			return writeJSON(os.Stdout, result)
		},
	}
	cmd.Flags().StringVar(&daPath, "day-ahead", "", "Path to raw day-ahead feed JSON")
	cmd.Flags().StringVar(&rtPath, "real-time", "", "Path to raw real-time feed JSON")
	cmd.Flags().StringVar(&date, "date", "", "Trading date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sourceTZ, "source-tz", "America/Los_Angeles", "Source market timezone")
	cmd.Flags().StringVar(&targetTZ, "target-tz", "America/Los_Angeles", "Target presentation timezone")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func writeJSON(f *os.File, v any) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
