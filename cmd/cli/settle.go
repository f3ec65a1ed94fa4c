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
	"gridpulse/internal/settlement"
)

func settleCmd() *cobra.Command {
	var (
		bidsPath string
		daPath   string
		rtPath   string
		date     string
		sourceTZ string
		targetTZ string
		csvOut   string
	)
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle bids against a reconstructed price day",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(bidsPath)
			if err != nil {
				return fmt.Errorf("read bids: %w", err)
			}
			var bids []model.Bid
			if err := json.Unmarshal(raw, &bids); err != nil {
				return fmt.Errorf("parse bids: %w", err)
			}

			targetDate, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
			}

			rawDA, err := data.LoadRawRecords(daPath)
			if err != nil {
				return fmt.Errorf("load day-ahead feed: %w", err)
			}
			rawRT, err := data.LoadRawRecords(rtPath)
			if err != nil {
				return fmt.Errorf("load real-time feed: %w", err)
			}

			day, err := reconstruct.Reconstruct(rawDA, rawRT, sourceTZ, targetTZ, targetDate)
			if err != nil {
				return err
			}

			result := settlement.Settle(bids, day.DayAhead, day.RealTime)
			log.Info().
				Int("bids", result.Summary.TotalBids).
				Int("executed", result.Summary.ExecutedTrades).
				Float64("total_profit", result.TotalProfit).
				Msg("settlement complete")

			if csvOut != "" {
				if err := settlement.WriteTradesCSV(csvOut, result); err != nil {
					return fmt.Errorf("write trade ledger: %w", err)
				}
				log.Info().Str("path", csvOut).Msg("trade ledger written")
			}
			return writeJSON(os.Stdout, result)
		},
	}
	cmd.Flags().StringVar(&bidsPath, "bids", "", "Path to bids JSON array")
	cmd.Flags().StringVar(&daPath, "day-ahead", "", "Path to raw day-ahead feed JSON")
	cmd.Flags().StringVar(&rtPath, "real-time", "", "Path to raw real-time feed JSON")
	cmd.Flags().StringVar(&date, "date", "", "Trading date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sourceTZ, "source-tz", "America/Los_Angeles", "Source market timezone")
	cmd.Flags().StringVar(&targetTZ, "target-tz", "America/Los_Angeles", "Target presentation timezone")
	cmd.Flags().StringVar(&csvOut, "out", "", "Optional CSV trade ledger output path")
	_ = cmd.MarkFlagRequired("bids")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
