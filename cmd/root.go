package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "figdex",
	Short: "Star Wars minifig catalog and price refresh pipeline",
	Long:  "Rebuilds the minifig catalog from the Rebrickable dumps, matches entries against community price listings, reconciles BrickLink identifiers, and refreshes price values through the BrickLink API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
