package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/policy"
	"github.com/srs-tools/cardsched/internal/scheduler"
)

func newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <deck-id> <card-id>",
		Short: "Show what each rating would do to a card, without reviewing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseID("deck", args[0])
			if err != nil {
				return err
			}
			cardID, err := parseID("card", args[1])
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

			deckPolicy, err := policy.NewFileRepository(cfg.Decks.PoliciesDirectory).FindByDeck(deckID)
			if err != nil {
				return err
			}

			schedule, err := scheduler.NewDBScheduleRepository(db).FindByCard(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			if schedule == nil {
				return fmt.Errorf("no schedule found for card %d", cardID)
			}

			machine := scheduler.NewStateMachine(deckPolicy, fsrs.NewModel())
			previews, err := machine.PreviewIntervals(*schedule, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("Card %d (%s):\n", schedule.CardID, schedule.State)
			for _, rating := range fsrs.Ratings() {
				fmt.Printf("  %-5s %s\n", rating.String()+":", scheduler.FormatInterval(previews[rating]))
			}
			return nil
		},
	}
}
