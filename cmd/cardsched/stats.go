package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srs-tools/cardsched/internal/review"
	"github.com/srs-tools/cardsched/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var year, month int
	command := &cobra.Command{
		Use:   "stats <deck-id>",
		Short: "Show per-month review statistics for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseID("deck", args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			entries, err := review.NewDBRepository(db).FindByDeck(cmd.Context(), deckID)
			if err != nil {
				return err
			}

			result := statistics.Calculate(entries, year, month)
			fmt.Printf("%-9s %8s %6s %7s %10s %8s\n", "Period", "Reviews", "New", "Lapses", "LapseRate", "Cards")
			for _, period := range result.Periods {
				fmt.Printf("%-9s %8d %6d %7d %9.1f%% %8d\n",
					period.Period, period.Reviews, period.NewCards, period.Lapses,
					period.LapseRate*100, period.UniqueCards)
			}
			fmt.Printf("%-9s %8d %6d %7d %9.1f%% %8d\n",
				"Total", result.Aggregate.Reviews, result.Aggregate.NewCards,
				result.Aggregate.Lapses, result.Aggregate.LapseRate*100,
				result.Aggregate.UniqueCards)
			return nil
		},
	}
	command.Flags().IntVar(&year, "year", 0, "Filter by year")
	command.Flags().IntVar(&month, "month", 0, "Filter by month (1-12)")

	return command
}
