package main

import (
	"fmt"
	"log/slog"
	"os"

	"cardshelf/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	databaseURL string
	storeDriver string
)

var rootCmd = &cobra.Command{
	Use:   "shelfctl",
	Short: "Operate a cardshelf deployment",
	Long: `shelfctl manages the cardshelf database and data.

Configuration comes from the same environment variables (and .env file)
as the server; flags override them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if databaseURL != "" {
			cfg.DatabaseURL = databaseURL
		}
		if storeDriver != "" {
			cfg.StoreDriver = storeDriver
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()
	cfg = config.Load()
	logger = config.NewLogger(cfg.Environment, os.Stderr)

	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "Database URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Store driver: postgres or memory (default $STORE_DRIVER)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(tokenCmd)
}
