package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Customer intelligence for maritime technology",
	Long:  "Serves a company directory with filtering, notes and starring, plus an AI enrichment pipeline that scrapes websites and LinkedIn to suggest company fields.",
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
