// Package analyst visits every Unscanned lead, gathers the site's text plus
// deep-context sub-pages, produces a pain-point summary, resolves a contact
// email through the waterfall chain, and records an audit for the sniper.
// Leads already visited are skipped, so a re-run over a fully Processed queue
// is a no-op.
package analyst

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/contact"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/dedupe"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/fetch"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/summarize"
)

const (
	// unfetchableSummary is recorded when a lead's site yields no content.
	unfetchableSummary = "Could not fetch site content"
	// defaultMaxCombinedChars caps homepage plus deep-context text.
	defaultMaxCombinedChars = 12000
)

// deepContextPaths are fetched after the homepage to enrich the summary input.
var deepContextPaths = []string{"/services", "/about", "/about-us", "/faq"}

// Fetcher is the narrow fetch contract the analyst needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *fetch.Page
}

// EmailResolver resolves a contact email for a site, or "" when exhausted.
type EmailResolver interface {
	Resolve(ctx context.Context, site contact.Site) string
}

// Report summarizes one analyst run.
type Report struct {
	LeadsSeen     int
	Analyzed      int
	AuditsCreated int
	Errors        int
}

// Analyzer executes the analysis stage for one client at a time.
type Analyzer struct {
	ledger     ledger.Ledger
	fetcher    Fetcher
	summarizer summarize.Summarizer
	resolver   EmailResolver
	profiles   *profile.Registry
	deepPaths  []string
	maxChars   int
	log        *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDeepPaths overrides the deep-context sub-paths.
func WithDeepPaths(paths []string) Option {
	return func(a *Analyzer) { a.deepPaths = paths }
}

// WithMaxCombinedChars overrides the combined text cap.
func WithMaxCombinedChars(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxChars = n
		}
	}
}

// NewAnalyzer wires the analysis stage.
func NewAnalyzer(lg ledger.Ledger, fetcher Fetcher, summarizer summarize.Summarizer, resolver EmailResolver, profiles *profile.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		ledger:     lg,
		fetcher:    fetcher,
		summarizer: summarizer,
		resolver:   resolver,
		profiles:   profiles,
		deepPaths:  deepContextPaths,
		maxChars:   defaultMaxCombinedChars,
		log:        zap.L().With(zap.String("stage", "analyst")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes every Unscanned lead in the client's queue. A failure on one
// record is logged and counted; the rest of the batch proceeds. The lead queue
// is saved only when at least one status changed.
func (a *Analyzer) Run(ctx context.Context, clientKey string) (*Report, error) {
	leads, err := a.ledger.LoadLeads(ctx, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "analyst: load leads")
	}

	p := a.profiles.Lookup(clientKey)
	report := &Report{LeadsSeen: len(leads)}
	a.log.Info("analysis run starting",
		zap.String("client_key", clientKey),
		zap.Int("leads", len(leads)),
	)

	var audits []model.Audit
	updated := false
	for i := range leads {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "analyst: run canceled")
		}
		if leads[i].Status != model.LeadUnscanned {
			continue
		}

		audit, err := a.analyzeOne(ctx, leads[i].URL, p)
		if err != nil {
			report.Errors++
			a.log.Error("lead analysis failed",
				zap.String("url", leads[i].URL),
				zap.Error(err),
			)
			continue
		}

		audits = append(audits, *audit)
		leads[i].Status = model.LeadProcessed
		updated = true
		report.Analyzed++
	}

	if len(audits) > 0 {
		if err := a.ledger.AppendAudits(ctx, clientKey, audits); err != nil {
			return nil, eris.Wrap(err, "analyst: append audits")
		}
		report.AuditsCreated = len(audits)
	}
	if updated {
		if err := a.ledger.SaveLeads(ctx, clientKey, leads); err != nil {
			return nil, eris.Wrap(err, "analyst: save leads")
		}
	}

	a.log.Info("analysis run finished",
		zap.String("client_key", clientKey),
		zap.Int("analyzed", report.Analyzed),
		zap.Int("audits", report.AuditsCreated),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// analyzeOne produces the audit for a single lead. Panics inside collaborator
// code are converted to errors so one bad record cannot sink the batch.
func (a *Analyzer) analyzeOne(ctx context.Context, url string, p profile.Profile) (audit *model.Audit, err error) {
	defer func() {
		if r := recover(); r != nil {
			audit, err = nil, eris.Errorf("analyst: panic analyzing %s: %v", url, r)
		}
	}()

	page := a.fetcher.Fetch(ctx, url)
	combined := a.gatherText(ctx, url, page)

	audit = &model.Audit{URL: url, Status: model.StatusDeadEnd}
	if page != nil {
		audit.Facebook = page.Socials["Facebook"]
		audit.LinkedIn = page.Socials["LinkedIn"]
		audit.Instagram = page.Socials["Instagram"]
		audit.Twitter = page.Socials["Twitter"]
		audit.ContactPage = page.ContactPage
	}

	if combined == "" {
		audit.PainPointSummary = unfetchableSummary
		a.finalizeStatus(audit)
		return audit, nil
	}

	summary, err := a.summarizer.Summarize(ctx, combined, p)
	if err != nil {
		return nil, eris.Wrap(err, "analyst: summarize")
	}
	audit.PainPointSummary = summary

	audit.Email = contact.NormalizeEmail(a.resolver.Resolve(ctx, contact.Site{
		URL:    url,
		Domain: dedupe.CanonicalDomain(url),
		Text:   combined,
	}))
	a.finalizeStatus(audit)
	return audit, nil
}

// finalizeStatus applies the contactability priority rule: a direct email
// beats social DMs, which beat a contact form, which beats nothing.
func (a *Analyzer) finalizeStatus(audit *model.Audit) {
	switch {
	case audit.Email != "":
		audit.Status = model.StatusAnalyzed
	case audit.HasSocial():
		audit.Status = model.StatusRequiresDM
	case audit.ContactPage != "":
		audit.Status = model.StatusUseForm
	default:
		audit.Status = model.StatusDeadEnd
	}
}

// gatherText concatenates the homepage text with each deep-context sub-page,
// labeling the sections, and caps the result.
func (a *Analyzer) gatherText(ctx context.Context, url string, page *fetch.Page) string {
	if page == nil || page.Text == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- HOMEPAGE ---\n")
	sb.WriteString(page.Text)
	sb.WriteByte('\n')

	root := strings.TrimRight(url, "/")
	for _, path := range a.deepPaths {
		if ctx.Err() != nil {
			break
		}
		sub := a.fetcher.Fetch(ctx, root+path)
		if sub == nil || sub.Text == "" {
			continue
		}
		sb.WriteString("--- ")
		sb.WriteString(strings.ToUpper(path))
		sb.WriteString(" ---\n")
		sb.WriteString(sub.Text)
		sb.WriteByte('\n')
	}

	combined := sb.String()
	if len(combined) > a.maxChars {
		combined = combined[:a.maxChars]
	}
	return combined
}
