package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/sniper"
)

var sniperCmd = &cobra.Command{
	Use:   "sniper",
	Short: "Send personalized outreach for every Analyzed audit",
	Long:  "Sends the audit email with attachment to each pending record, guarded against double-sends across the session and the full history, saving the store after every record.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "sniper"))

		lg, err := openLedger()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Close() }()

		profiles, err := loadProfiles()
		if err != nil {
			return err
		}

		m, sender, err := buildMailer()
		if err != nil {
			return err
		}

		throttleMin, throttleMax := cfg.Sniper.ThrottleBounds()
		opts := []sniper.Option{
			sniper.WithAttachment(cfg.Sniper.AttachmentPath),
			sniper.WithSender(sender),
			sniper.WithCooldown(cfg.Sniper.Cooldown()),
			sniper.WithThrottle(throttleMin, throttleMax),
		}
		if h := hunterClient(); h != nil {
			opts = append(opts, sniper.WithHunter(h))
		}

		report, err := sniper.NewSniper(lg, m, profiles, opts...).Run(ctx, clientKey(cmd))
		if err != nil {
			return eris.Wrap(err, "sniper")
		}

		log.Info("sniper complete",
			zap.Int("pending", report.Pending),
			zap.Int("sent", report.Sent),
			zap.Int("attached", report.Attached),
			zap.Int("skipped", report.Skipped),
			zap.Int("enriched", report.Enriched),
			zap.Int("errors", report.Errors),
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sniperCmd)
}
