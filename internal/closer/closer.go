// Package closer works the back half of the outreach loop: it polls the
// inbox for replies to sent audits, classifies each reply's intent, and
// nudges silent prospects once with a follow-up after a waiting period.
// Mailbox failures are treated as a reply on purpose; when we cannot verify
// silence, we must not email again.
package closer

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/sniper"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailbox"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailer"
)

const (
	defaultFollowUpAfter = 72 * time.Hour
	defaultThrottleMin   = 30 * time.Second
	defaultThrottleMax   = 60 * time.Second
)

// Report summarizes one closer run.
type Report struct {
	Checked       int
	Replies       int
	HotLeads      int
	NotInterested int
	Dead          int
	FollowUps     int
	Errors        int
}

// Closer executes the reply-and-follow-up stage for one client at a time.
type Closer struct {
	ledger        ledger.Ledger
	mailbox       mailbox.Reader
	mailer        mailer.Mailer
	classifier    Classifier
	sender        sniper.Sender
	followUpAfter time.Duration
	throttleMin   time.Duration
	throttleMax   time.Duration
	now           func() time.Time
	log           *zap.Logger
}

// Option configures a Closer.
type Option func(*Closer)

// WithSender sets the outreach identity used in follow-ups.
func WithSender(sender sniper.Sender) Option {
	return func(c *Closer) { c.sender = sender }
}

// WithFollowUpAfter overrides how long a prospect gets before the nudge.
func WithFollowUpAfter(d time.Duration) Option {
	return func(c *Closer) {
		if d > 0 {
			c.followUpAfter = d
		}
	}
}

// WithThrottle overrides the randomized inter-send delay bounds.
func WithThrottle(min, max time.Duration) Option {
	return func(c *Closer) { c.throttleMin, c.throttleMax = min, max }
}

// NewCloser wires the reply stage.
func NewCloser(lg ledger.Ledger, mb mailbox.Reader, m mailer.Mailer, classifier Classifier, opts ...Option) *Closer {
	c := &Closer{
		ledger:        lg,
		mailbox:       mb,
		mailer:        m,
		classifier:    classifier,
		sender:        sniper.Sender{Name: "The DBAI Team"},
		followUpAfter: defaultFollowUpAfter,
		throttleMin:   defaultThrottleMin,
		throttleMax:   defaultThrottleMax,
		now:           time.Now,
		log:           zap.L().With(zap.String("stage", "closer")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every awaiting-reply audit whose waiting period has elapsed.
// The store is saved once at the end when anything changed.
func (c *Closer) Run(ctx context.Context, clientKey string) (*Report, error) {
	audits, err := c.ledger.LoadAudits(ctx, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "closer: load audits")
	}

	report := &Report{}
	updated := false
	for i := range audits {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "closer: run canceled")
		}
		if !audits[i].Status.AwaitingReply() || audits[i].Email == "" {
			continue
		}

		sentAt, err := audits[i].SentTime()
		if err != nil {
			c.log.Warn("skipping audit with invalid sent date",
				zap.String("url", audits[i].URL),
				zap.String("sent_date", audits[i].SentDate),
			)
			continue
		}
		if c.now().Sub(sentAt) < c.followUpAfter {
			continue
		}

		report.Checked++
		if c.processOne(ctx, &audits[i], report) {
			updated = true
		}
	}

	if updated {
		if err := c.ledger.SaveAudits(ctx, clientKey, audits); err != nil {
			return report, eris.Wrap(err, "closer: save audits")
		}
	}

	c.log.Info("reply run finished",
		zap.String("client_key", clientKey),
		zap.Int("checked", report.Checked),
		zap.Int("replies", report.Replies),
		zap.Int("follow_ups", report.FollowUps),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// processOne resolves one awaiting-reply audit. Returns whether it changed.
func (c *Closer) processOne(ctx context.Context, audit *model.Audit, report *Report) (changed bool) {
	log := c.log.With(zap.String("url", audit.URL), zap.String("email", audit.Email))

	// Panics inside collaborator code are swallowed per record so one bad
	// reply cannot sink the batch or drop earlier unsaved changes.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic processing reply, leaving record untouched", zap.Any("panic", r))
			report.Errors++
			changed = false
		}
	}()

	replied, err := c.mailbox.HasReplyFrom(ctx, audit.Email)
	if err != nil {
		// Fail-safe: an unverifiable mailbox counts as a reply so we never
		// follow up into the dark.
		log.Warn("mailbox check failed, assuming replied", zap.Error(err))
		replied = true
	}

	if replied {
		return c.resolveReply(ctx, audit, report, log)
	}

	// Silence. Sent records get one nudge; followed-up records just wait.
	if audit.Status != model.StatusSent {
		return false
	}
	return c.followUp(ctx, audit, report, log)
}

func (c *Closer) resolveReply(ctx context.Context, audit *model.Audit, report *Report, log *zap.Logger) bool {
	status := model.StatusReplied
	body, err := c.mailbox.LatestBody(ctx, audit.Email)
	if err != nil {
		log.Warn("could not fetch reply body, recording neutral reply", zap.Error(err))
	} else if body != "" {
		if status, err = c.classifier.Classify(ctx, body); err != nil {
			log.Warn("classification failed, recording neutral reply", zap.Error(err))
			status = model.StatusReplied
		}
	}

	if err := audit.TransitionTo(status); err != nil {
		log.Error("status update failed", zap.Error(err))
		report.Errors++
		return false
	}

	report.Replies++
	switch status {
	case model.StatusHotLead:
		report.HotLeads++
	case model.StatusNotInterested:
		report.NotInterested++
	case model.StatusDead:
		report.Dead++
	}
	log.Info("reply recorded", zap.String("status", string(status)))
	return true
}

func (c *Closer) followUp(ctx context.Context, audit *model.Audit, report *Report, log *zap.Logger) bool {
	_, err := c.mailer.Send(ctx, mailer.Message{
		To:      audit.Email,
		Subject: sniper.FollowUpSubject(audit.URL),
		Body:    sniper.FollowUpBody(audit.URL, c.sender),
	})
	if err != nil {
		log.Warn("follow-up send failed", zap.Error(err))
		report.Errors++
		return false
	}

	if err := audit.TransitionTo(model.StatusFollowedUp); err != nil {
		log.Error("status update failed", zap.Error(err))
		report.Errors++
		return false
	}

	report.FollowUps++
	log.Info("follow-up sent")
	if err := c.throttle(ctx); err != nil {
		log.Warn("throttle interrupted", zap.Error(err))
	}
	return true
}

// throttle sleeps a random duration inside the configured bounds.
func (c *Closer) throttle(ctx context.Context) error {
	d := c.throttleMin
	if spread := c.throttleMax - c.throttleMin; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
