package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/closer"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/scout"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/sniper"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailbox"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: scout, analyst, sniper, closer",
	Long:  "Executes all four stages in order for one client. Stages share the same ledger, so each picks up exactly where the previous one left off.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "run"))
		key := clientKey(cmd)

		niche, _ := cmd.Flags().GetString("niche")
		location, _ := cmd.Flags().GetString("location")
		target, _ := cmd.Flags().GetInt("target")
		skipCloser, _ := cmd.Flags().GetBool("skip-closer")

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

		// Scout
		scoutReport, err := scout.NewRunner(lg, searchProviders(),
			scout.WithMaxPages(cfg.Scout.MaxPages),
		).Run(ctx, scout.Request{
			Niche:       niche,
			Location:    location,
			ClientKey:   key,
			TargetCount: target,
		})
		if err != nil {
			return eris.Wrap(err, "run: scout")
		}
		log.Info("scout stage done", zap.Int("leads_added", scoutReport.LeadsAdded))

		// Analyst
		a, err := buildAnalyzer(lg)
		if err != nil {
			return err
		}
		analystReport, err := a.Run(ctx, key)
		if err != nil {
			return eris.Wrap(err, "run: analyst")
		}
		log.Info("analyst stage done", zap.Int("audits_created", analystReport.AuditsCreated))

		// Sniper
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
		sniperReport, err := sniper.NewSniper(lg, m, profiles, opts...).Run(ctx, key)
		if err != nil {
			return eris.Wrap(err, "run: sniper")
		}
		log.Info("sniper stage done", zap.Int("sent", sniperReport.Sent))

		if skipCloser {
			log.Info("closer stage skipped")
			return nil
		}

		// Closer
		mb, err := mailbox.Dial(mailbox.Config{
			Host:     cfg.IMAP.Host,
			Port:     cfg.IMAP.Port,
			Username: cfg.IMAP.Username,
			Password: cfg.IMAP.Password,
		})
		if err != nil {
			return eris.Wrap(err, "run: imap mailbox")
		}
		defer func() { _ = mb.Close() }()

		closerReport, err := closer.NewCloser(lg, mb, m, buildClassifier(),
			closer.WithSender(sender),
			closer.WithFollowUpAfter(cfg.Closer.FollowUpAfter()),
			closer.WithThrottle(throttleMin, throttleMax),
		).Run(ctx, key)
		if err != nil {
			return eris.Wrap(err, "run: closer")
		}
		log.Info("closer stage done",
			zap.Int("replies", closerReport.Replies),
			zap.Int("follow_ups", closerReport.FollowUps),
		)

		return nil
	},
}

func init() {
	runCmd.Flags().String("niche", "", "target niche, e.g. Roofing (required)")
	runCmd.Flags().String("location", "", "target location, e.g. Denver (required)")
	runCmd.Flags().Int("target", 0, "new leads to collect (default from config)")
	runCmd.Flags().Bool("skip-closer", false, "skip the reply/follow-up stage")
	rootCmd.AddCommand(runCmd)
}
