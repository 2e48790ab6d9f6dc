// Package sniper sends the personalized outreach email for every audit that
// is ready. The send guard enforces at-most-once delivery per address across
// the session and the full audit history, the audit store is rewritten after
// every record so a crash loses at most the row in flight, and sends are
// spaced by a randomized delay to stay under provider radar.
package sniper

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/dedupe"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/hunter"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailer"
)

const (
	defaultThrottleMin = 30 * time.Second
	defaultThrottleMax = 60 * time.Second
)

// Report summarizes one sniper run.
type Report struct {
	Pending  int
	Sent     int
	Attached int
	Skipped  int
	Enriched int
	Errors   int
}

// Sniper executes the outreach stage for one client at a time.
type Sniper struct {
	ledger         ledger.Ledger
	mailer         mailer.Mailer
	hunter         hunter.Client // nil disables enrichment
	profiles       *profile.Registry
	sender         Sender
	attachmentPath string
	cooldown       time.Duration
	throttleMin    time.Duration
	throttleMax    time.Duration
	log            *zap.Logger
}

// Option configures a Sniper.
type Option func(*Sniper)

// WithHunter enables email enrichment for audits missing an address.
func WithHunter(client hunter.Client) Option {
	return func(s *Sniper) { s.hunter = client }
}

// WithAttachment sets the audit PDF attached to every send.
func WithAttachment(path string) Option {
	return func(s *Sniper) { s.attachmentPath = path }
}

// WithSender sets the outreach identity.
func WithSender(sender Sender) Option {
	return func(s *Sniper) { s.sender = sender }
}

// WithCooldown lets historical recipients become eligible again after the
// window. Zero (the default) blocks them forever.
func WithCooldown(d time.Duration) Option {
	return func(s *Sniper) { s.cooldown = d }
}

// WithThrottle overrides the randomized inter-send delay bounds.
func WithThrottle(min, max time.Duration) Option {
	return func(s *Sniper) { s.throttleMin, s.throttleMax = min, max }
}

// NewSniper wires the outreach stage.
func NewSniper(lg ledger.Ledger, m mailer.Mailer, profiles *profile.Registry, opts ...Option) *Sniper {
	s := &Sniper{
		ledger:      lg,
		mailer:      m,
		profiles:    profiles,
		sender:      Sender{Name: "The DBAI Team"},
		throttleMin: defaultThrottleMin,
		throttleMax: defaultThrottleMax,
		log:         zap.L().With(zap.String("stage", "sniper")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pending reports whether an audit is eligible for a send attempt. Send
// failures stay in the pool so a later run can retry them.
func pending(status model.AuditStatus) bool {
	return status == model.StatusAnalyzed || status == model.StatusSendFailed
}

// Run sends outreach for every pending audit of the client. The store is
// saved after each record mutation; cancellation between records leaves a
// consistent store behind.
func (s *Sniper) Run(ctx context.Context, clientKey string) (*Report, error) {
	audits, err := s.ledger.LoadAudits(ctx, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "sniper: load audits")
	}

	report := &Report{}
	for _, audit := range audits {
		if pending(audit.Status) {
			report.Pending++
		}
	}
	if report.Pending == 0 {
		s.log.Info("no pending audits to send", zap.String("client_key", clientKey))
		return report, nil
	}

	p := s.profiles.Lookup(clientKey)
	guard := NewSendGuard(audits, s.cooldown)
	s.log.Info("outreach run starting",
		zap.String("client_key", clientKey),
		zap.String("profile", p.CompanyName),
		zap.Int("pending", report.Pending),
	)

	save := func() error {
		return s.ledger.SaveAudits(ctx, clientKey, audits)
	}

	for i := range audits {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "sniper: run canceled")
		}
		if !pending(audits[i].Status) {
			continue
		}
		if audits[i].URL == "" {
			s.log.Warn("skipping audit without a URL")
			continue
		}

		changed, sent := s.processOne(ctx, &audits[i], p, guard, report)
		if changed {
			if err := save(); err != nil {
				return report, eris.Wrap(err, "sniper: save audits")
			}
		}
		if sent && report.Sent < report.Pending {
			if err := s.throttle(ctx); err != nil {
				return report, err
			}
		}
	}

	s.log.Info("outreach run finished",
		zap.String("client_key", clientKey),
		zap.Int("sent", report.Sent),
		zap.Int("attached", report.Attached),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// processOne handles a single pending audit. It reports whether the record
// changed (and so needs saving) and whether a message actually went out.
func (s *Sniper) processOne(ctx context.Context, audit *model.Audit, p profile.Profile, guard *SendGuard, report *Report) (changed, sent bool) {
	log := s.log.With(zap.String("url", audit.URL))

	// Panics inside collaborator code park the record as Error so one bad
	// record cannot sink the batch.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic processing audit, parking record", zap.Any("panic", r))
			report.Errors++
			changed, sent = false, false
			if terr := audit.TransitionTo(model.StatusError); terr == nil {
				changed = true
			}
		}
	}()

	if audit.Email == "" {
		if !s.enrich(ctx, audit, report) {
			if err := audit.TransitionTo(model.StatusDeadEndNoEmail); err != nil {
				log.Error("status update failed", zap.Error(err))
				report.Errors++
				return false, false
			}
			log.Warn("no contact email found, parking audit")
			return true, false
		}
	}

	switch guard.Check(audit.Email) {
	case SkipSession:
		log.Warn("skipping: already emailed this session", zap.String("email", audit.Email))
		report.Skipped++
		return false, false
	case SkipHistory:
		log.Warn("skipping: address already contacted in history", zap.String("email", audit.Email))
		report.Skipped++
		if err := audit.TransitionTo(model.StatusSkippedPreviouslySent); err != nil {
			log.Error("status update failed", zap.Error(err))
			report.Errors++
			return false, false
		}
		return true, false
	}

	attached, err := s.mailer.Send(ctx, mailer.Message{
		To:             audit.Email,
		Subject:        Subject(audit.URL),
		Body:           Body(audit.URL, audit.PainPointSummary, p, s.sender),
		AttachmentPath: s.attachmentPath,
	})
	if err != nil {
		log.Warn("send failed", zap.String("email", audit.Email), zap.Error(err))
		report.Errors++
		if audit.Status == model.StatusSendFailed {
			return false, false
		}
		if terr := audit.TransitionTo(model.StatusSendFailed); terr != nil {
			log.Error("status update failed", zap.Error(terr))
			return false, false
		}
		return true, false
	}

	if err := audit.TransitionTo(model.StatusSent); err != nil {
		log.Error("status update failed after send", zap.Error(err))
		report.Errors++
		return false, false
	}
	audit.StampSent(time.Now(), attached)
	guard.MarkSent(audit.Email)
	report.Sent++
	if attached {
		report.Attached++
	}
	log.Info("outreach sent", zap.String("email", audit.Email), zap.Bool("attached", attached))
	return true, true
}

// enrich tries to fill a missing email via the enrichment API. Returns true
// when an address was found.
func (s *Sniper) enrich(ctx context.Context, audit *model.Audit, report *Report) bool {
	if s.hunter == nil {
		return false
	}
	domain := dedupe.CanonicalDomain(audit.URL)
	if domain == "" {
		return false
	}

	resp, err := s.hunter.DomainSearch(ctx, domain)
	if err != nil {
		s.log.Warn("enrichment failed", zap.String("domain", domain), zap.Error(err))
		return false
	}
	email := resp.FirstEmail()
	if email == "" {
		return false
	}

	audit.Email = email
	report.Enriched++
	s.log.Info("email enriched", zap.String("domain", domain), zap.String("email", email))
	return true
}

// throttle sleeps a random duration inside the configured bounds.
func (s *Sniper) throttle(ctx context.Context) error {
	d := s.throttleMin
	if spread := s.throttleMax - s.throttleMin; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "sniper: throttle interrupted")
	}
}
