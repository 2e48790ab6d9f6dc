package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "saleswarm",
	Short: "Cold outreach pipeline for local business automation audits",
	Long:  "Discovers candidate business websites, analyzes each for an automation revenue leak and a contact email, sends personalized outreach with an audit attachment, and works replies with classified follow-ups. State is CSV or SQLite, partitioned per client key.",
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

func init() {
	rootCmd.PersistentFlags().String("client-key", "default", "client key isolating all durable state")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
