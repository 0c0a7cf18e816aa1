package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/srs-tools/cardsched/internal/policy"
)

func newPolicyCommand() *cobra.Command {
	policyCommand := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and validate deck scheduling policies",
	}

	policyCommand.AddCommand(newPolicyShowCommand())
	policyCommand.AddCommand(newPolicyValidateCommand())

	return policyCommand
}

func newPolicyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <deck-id>",
		Short: "Print the effective policy for a deck",
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

			deckPolicy, err := policy.NewFileRepository(cfg.Decks.PoliciesDirectory).FindByDeck(deckID)
			if err != nil {
				return err
			}
			return yaml.NewEncoder(os.Stdout).Encode(deckPolicy)
		},
	}
}

func newPolicyValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <deck-id>",
		Short: "Validate the stored policy for a deck",
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

			if _, err := policy.NewFileRepository(cfg.Decks.PoliciesDirectory).FindByDeck(deckID); err != nil {
				return err
			}
			fmt.Printf("Policy for deck %d is valid.\n", deckID)
			return nil
		},
	}
}
