package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/closer"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailbox"
)

var closerCmd = &cobra.Command{
	Use:   "closer",
	Short: "Check for replies and send follow-ups",
	Long:  "Polls the inbox for replies to sent audits, classifies each reply's intent, and nudges silent prospects once after the waiting period.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "closer"))

		lg, err := openLedger()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Close() }()

		mb, err := mailbox.Dial(mailbox.Config{
			Host:     cfg.IMAP.Host,
			Port:     cfg.IMAP.Port,
			Username: cfg.IMAP.Username,
			Password: cfg.IMAP.Password,
		})
		if err != nil {
			return eris.Wrap(err, "imap mailbox")
		}
		defer func() { _ = mb.Close() }()

		m, sender, err := buildMailer()
		if err != nil {
			return err
		}

		c := closer.NewCloser(lg, mb, m, buildClassifier(),
			closer.WithSender(sender),
			closer.WithFollowUpAfter(cfg.Closer.FollowUpAfter()),
			closer.WithThrottle(cfg.Sniper.ThrottleBounds()),
		)

		report, err := c.Run(ctx, clientKey(cmd))
		if err != nil {
			return eris.Wrap(err, "closer")
		}

		log.Info("closer complete",
			zap.Int("checked", report.Checked),
			zap.Int("replies", report.Replies),
			zap.Int("hot_leads", report.HotLeads),
			zap.Int("follow_ups", report.FollowUps),
			zap.Int("errors", report.Errors),
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(closerCmd)
}
