package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/scout"
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Discover new candidate business websites for a niche and location",
	Long:  "Runs the search provider fallback chain, filters directory and social domains, dedups against the client's full lead and audit history, and appends fresh leads to the queue.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "scout"))

		niche, _ := cmd.Flags().GetString("niche")
		location, _ := cmd.Flags().GetString("location")
		target, _ := cmd.Flags().GetInt("target")

		if niche == "" {
			return eris.New("--niche is required")
		}
		if location == "" {
			return eris.New("--location is required")
		}
		if target <= 0 {
			target = cfg.Scout.TargetCount
		}

		lg, err := openLedger()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Close() }()

		runner := scout.NewRunner(lg, searchProviders(),
			scout.WithMaxPages(cfg.Scout.MaxPages),
		)

		report, err := runner.Run(ctx, scout.Request{
			Niche:       niche,
			Location:    location,
			ClientKey:   clientKey(cmd),
			TargetCount: target,
		})
		if err != nil {
			return eris.Wrap(err, "scout")
		}

		log.Info("scout complete",
			zap.String("run_id", report.RunID),
			zap.Int("leads_added", report.LeadsAdded),
			zap.Int("known_before", report.KnownBefore),
		)

		return nil
	},
}

func init() {
	scoutCmd.Flags().String("niche", "", "target niche, e.g. Roofing (required)")
	scoutCmd.Flags().String("location", "", "target location, e.g. Denver (required)")
	scoutCmd.Flags().Int("target", 0, "new leads to collect (default from config)")
	rootCmd.AddCommand(scoutCmd)
}
