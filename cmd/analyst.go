package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analystCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Analyze every Unscanned lead and record audits",
	Long:  "Fetches each lead's site plus deep-context sub-pages, produces a pain-point summary, resolves a contact email through the waterfall chain, and writes an audit record per lead.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "analyst"))

		lg, err := openLedger()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Close() }()

		a, err := buildAnalyzer(lg)
		if err != nil {
			return err
		}

		report, err := a.Run(ctx, clientKey(cmd))
		if err != nil {
			return eris.Wrap(err, "analyst")
		}

		log.Info("analyst complete",
			zap.Int("leads_seen", report.LeadsSeen),
			zap.Int("analyzed", report.Analyzed),
			zap.Int("audits_created", report.AuditsCreated),
			zap.Int("errors", report.Errors),
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(analystCmd)
}
