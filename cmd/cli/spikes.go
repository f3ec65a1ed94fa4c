package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gridpulse/internal/api/models"
	"gridpulse/internal/data"
	"gridpulse/internal/model"
	"gridpulse/internal/reconstruct"
	"gridpulse/internal/spikes"
)

func spikesCmd() *cobra.Command {
	var (
		seriesPath  string
		recordsPath string
		sourceTZ    string
		date        string
		minMag      float64
		zThreshold  float64
	)
	cmd := &cobra.Command{
		Use:   "spikes",
		Short: "Detect price spikes and synthesize grid events",
		RunE: func(cmd *cobra.Command, args []string) error {
			var series []model.LocationSeries
			var err error
			switch {
			case seriesPath != "":
				if series, err = data.LoadSeries(seriesPath); err != nil {
					return fmt.Errorf("load series: %w", err)
				}
			case recordsPath != "":
				records, err := data.LoadRawRecords(recordsPath)
				if err != nil {
					return fmt.Errorf("load records: %w", err)
				}
				if series, err = reconstruct.ParseSeries(records, sourceTZ, "UNKNOWN"); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --series or --records is required")
			}

			thresholds := spikes.DefaultThresholds()
			if minMag > 0 {
				thresholds.MinMagnitude = minMag
			}
			if zThreshold > 0 {
				thresholds.ZScoreThreshold = zThreshold
			}

			detected, err := spikes.Detect(series, thresholds)
			if err != nil {
				return err
			}

			eventDate := time.Now().UTC()
			if date != "" {
				if eventDate, err = time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
				}
			} else if len(detected) > 0 {
				eventDate = detected[0].Timestamp.UTC()
			}
			events := spikes.SynthesizeEvents(detected, eventDate)

			log.Info().Int("spikes", len(detected)).Int("events", len(events)).Msg("detection complete")
			return writeJSON(os.Stdout, models.SpikesResponse{Spikes: detected, Events: events})
		},
	}
	cmd.Flags().StringVar(&seriesPath, "series", "", "Path to pre-grouped location series JSON")
	cmd.Flags().StringVar(&recordsPath, "records", "", "Path to raw feed JSON (grouped by location field)")
	cmd.Flags().StringVar(&sourceTZ, "source-tz", "America/Los_Angeles", "Source market timezone")
	cmd.Flags().StringVar(&date, "date", "", "Trading date for event bucketing (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&minMag, "min-magnitude", 0, "Minimum $/MWh deviation (default 5)")
	cmd.Flags().Float64Var(&zThreshold, "z-threshold", 0, "Z-score trigger (default 1.5)")
	return cmd
}
