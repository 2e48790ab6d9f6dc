package sniper

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
)

// Verdict is the guard's answer for one prospective send.
type Verdict int

const (
	// SendOK means the address has never been contacted.
	SendOK Verdict = iota
	// SkipSession means this run already emailed the address.
	SkipSession
	// SkipHistory means a past run already sent to the address.
	SkipHistory
)

// SendGuard enforces the send-once invariant: an address is refused when it
// was already emailed in this session, or when the audit history shows a send
// to it, optionally only within a cooldown window.
type SendGuard struct {
	session  map[string]struct{}
	history  map[string]time.Time
	cooldown time.Duration // 0 means history blocks forever
	now      func() time.Time
}

// NewSendGuard builds the guard from the client's audit history. A non-zero
// cooldown lets addresses whose last send is older than the window through
// again; zero keeps the original block-forever behavior.
func NewSendGuard(audits []model.Audit, cooldown time.Duration) *SendGuard {
	g := &SendGuard{
		session:  map[string]struct{}{},
		history:  map[string]time.Time{},
		cooldown: cooldown,
		now:      time.Now,
	}
	for _, audit := range audits {
		if !audit.Status.Contacted() {
			continue
		}
		email := normalize(audit.Email)
		if email == "" {
			continue
		}
		sentAt, err := audit.SentTime()
		if err != nil {
			// No usable date: treat as just sent so the block holds.
			sentAt = g.now()
		}
		if prev, ok := g.history[email]; !ok || sentAt.After(prev) {
			g.history[email] = sentAt
		}
	}
	return g
}

// Check returns the verdict for an address without recording anything.
func (g *SendGuard) Check(email string) Verdict {
	email = normalize(email)
	if email == "" {
		return SendOK
	}
	if _, ok := g.session[email]; ok {
		return SkipSession
	}
	sentAt, ok := g.history[email]
	if !ok {
		return SendOK
	}
	if g.cooldown > 0 && g.now().Sub(sentAt) > g.cooldown {
		zap.L().Info("send guard: cooldown elapsed, address eligible again",
			zap.String("email", email),
			zap.Time("last_sent", sentAt),
		)
		return SendOK
	}
	return SkipHistory
}

// MarkSent records a successful dispatch so later checks in the same session
// refuse the address.
func (g *SendGuard) MarkSent(email string) {
	email = normalize(email)
	if email == "" {
		return
	}
	g.session[email] = struct{}{}
	g.history[email] = g.now()
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
