package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srs-tools/cardsched/internal/database"
	"github.com/srs-tools/cardsched/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := database.Migrate(cmd.Context(), db, schemas.Migrations); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}
