package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/srs-tools/cardsched/internal/cli"
	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/policy"
	"github.com/srs-tools/cardsched/internal/queue"
	"github.com/srs-tools/cardsched/internal/review"
	"github.com/srs-tools/cardsched/internal/scheduler"
	"github.com/srs-tools/cardsched/internal/session"
	"github.com/srs-tools/cardsched/internal/storage"
)

type studyOptions struct {
	newPerDay    int
	reviewPerDay int
}

func addStudyFlags(flags *pflag.FlagSet, opts *studyOptions) {
	flags.IntVar(&opts.newPerDay, "new-per-day", -1, "Override the deck's new cards per day cap")
	flags.IntVar(&opts.reviewPerDay, "review-per-day", -1, "Override the deck's reviews per day cap")
}

func (opts studyOptions) apply(p *policy.DeckPolicy) {
	if opts.newPerDay >= 0 {
		p.NewPerDay = opts.newPerDay
	}
	if opts.reviewPerDay >= 0 {
		p.ReviewPerDay = opts.reviewPerDay
	}
}

func newStudyCommand() *cobra.Command {
	var opts studyOptions
	command := &cobra.Command{
		Use:   "study <deck-id>",
		Short: "Run an interactive study session for a deck",
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

			deckPolicy, err := policy.NewFileRepository(cfg.Decks.PoliciesDirectory).FindByDeck(deckID)
			if err != nil {
				return err
			}
			opts.apply(&deckPolicy)

			ctx := cmd.Context()
			now := time.Now()

			newStudied, err := review.NewDBRepository(db).CountNewStudiedSince(ctx, deckID, localMidnight(now))
			if err != nil {
				return err
			}
			schedules, err := scheduler.NewDBScheduleRepository(db).FindByDeck(ctx, deckID)
			if err != nil {
				return err
			}

			built := queue.NewBuilder(deckPolicy).Build(schedules, newStudied, now)
			store := storage.NewDBStore(db)
			if len(built.Buried) > 0 {
				if err := store.BurySchedules(ctx, built.Buried); err != nil {
					return err
				}
			}

			machine := scheduler.NewStateMachine(deckPolicy, fsrs.NewModel())
			runner := session.NewRunner(machine, store, built.Cards)

			fmt.Printf("Starting study session with %d cards\n\n", len(built.Cards))
			return cli.NewStudyCLI(runner, machine).Run(ctx)
		},
	}
	addStudyFlags(command.Flags(), &opts)

	return command
}
