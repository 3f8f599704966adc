package main

import (
	"fmt"
	"os"

	"cardshelf/internal/repository"
	"cardshelf/internal/seed"
	servicePlacement "cardshelf/internal/service/placement"

	"github.com/spf13/cobra"
)

var (
	seedFile string
	seedUser string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create folders and cards from a YAML fixture",
	Example: `  shelfctl seed -f internal/seed/testdata/sample.yaml
  shelfctl seed -f fixture.yaml --user 9f1c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open fixture: %w", err)
		}
		defer f.Close()

		fixture, err := seed.Load(f)
		if err != nil {
			return err
		}

		userID := fixture.UserID
		if seedUser != "" {
			userID = seedUser
		}

		ctx := cmd.Context()
		store, err := repository.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := servicePlacement.NewPlacementService(store.Folders, store.Cards, store.TxManager, logger)
		summary, err := seed.Apply(ctx, svc, userID, fixture, logger)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d folders and %d cards for %s\n", summary.Folders, summary.Cards, userID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Fixture file (YAML)")
	seedCmd.Flags().StringVar(&seedUser, "user", "", "Owner user id (overrides user_id in the fixture)")
	_ = seedCmd.MarkFlagRequired("file")
}
