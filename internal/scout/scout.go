// Package scout discovers new candidate business websites for a niche and
// location. Providers are tried in order: the primary runs until it hits the
// target, runs out of pages, or fails at the provider level; fallback tiers
// run only when the tier before them failed or contributed nothing. Every
// accepted candidate passes the blacklist and the known-domain check first.
package scout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/dedupe"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/search"
)

const (
	defaultTargetCount = 10
	defaultMaxPages    = 5
)

// defaultBlacklist lists directory, aggregator, and social hostnames that are
// never direct business leads. Matching is substring against the canonical
// domain.
var defaultBlacklist = []string{
	"yelp",
	"yellowpages",
	"crunchbase",
	"thumbtack",
	"bbb.org",
	"facebook",
	"linkedin",
	"angi",
	"homeadvisor",
	"porch",
}

// Request describes one discovery run.
type Request struct {
	Niche       string
	Location    string
	ClientKey   string
	TargetCount int // 0 means the default
}

// Report summarizes what a run produced.
type Report struct {
	RunID       string
	Query       string
	LeadsAdded  int
	KnownBefore int
}

// Runner executes discovery runs against a provider chain and a ledger.
type Runner struct {
	ledger    ledger.Ledger
	providers []search.Provider
	blacklist []string
	maxPages  int
	limiter   *rate.Limiter
	log       *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxPages overrides the per-provider page safety ceiling.
func WithMaxPages(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// WithBlacklist replaces the default host blacklist.
func WithBlacklist(hosts []string) Option {
	return func(r *Runner) { r.blacklist = hosts }
}

// WithRateLimit replaces the default one-request-per-second search pacing.
func WithRateLimit(l *rate.Limiter) Option {
	return func(r *Runner) { r.limiter = l }
}

// NewRunner builds a discovery runner. Providers are tried in the order given.
func NewRunner(lg ledger.Ledger, providers []search.Provider, opts ...Option) *Runner {
	r := &Runner{
		ledger:    lg,
		providers: providers,
		blacklist: defaultBlacklist,
		maxPages:  defaultMaxPages,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		log:       zap.L().With(zap.String("stage", "scout")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildQuery renders the search query for a niche and location. Directory
// sites are excluded at the query level as well as by the blacklist filter.
func BuildQuery(niche, location string) string {
	return fmt.Sprintf(`"%s" "%s" -site:yelp.com -site:bbb.org -site:facebook.com -site:linkedin.com -site:yellowpages.com -site:angi.com`,
		niche, location)
}

// Run executes one discovery run and appends accepted leads to the client's
// lead store. The store exists afterward even when the run produced nothing.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if len(r.providers) == 0 {
		return nil, eris.New("scout: no search providers configured")
	}

	target := req.TargetCount
	if target <= 0 {
		target = defaultTargetCount
	}

	known, err := dedupe.BuildKnownSet(ctx, r.ledger, req.ClientKey)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       uuid.NewString(),
		Query:       BuildQuery(req.Niche, req.Location),
		KnownBefore: known.Len(),
	}
	r.log.Info("discovery run starting",
		zap.String("run_id", report.RunID),
		zap.String("client_key", req.ClientKey),
		zap.String("query", report.Query),
		zap.Int("target", target),
		zap.Int("known_domains", known.Len()),
	)

	var leads []model.Lead
	for i, provider := range r.providers {
		added, err := r.collect(ctx, provider, report.Query, known, &leads, target)
		if len(leads) >= target {
			break
		}
		if err != nil {
			// Provider-level failure: degrade to the next tier with the
			// remaining needed count.
			r.log.Warn("provider failed, falling back",
				zap.String("provider", provider.Name()),
				zap.Int("collected", len(leads)),
				zap.Error(err),
			)
			continue
		}
		if i == 0 {
			// Primary ran out of results without failing; the well is dry.
			break
		}
		if added > 0 {
			break
		}
		// A fallback tier that yields nothing passes the baton onward.
	}

	if len(leads) > 0 {
		if err := r.ledger.AppendLeads(ctx, req.ClientKey, leads); err != nil {
			return nil, eris.Wrap(err, "scout: append leads")
		}
	} else if err := r.ledger.EnsureLeadStore(ctx, req.ClientKey); err != nil {
		return nil, eris.Wrap(err, "scout: ensure lead store")
	}

	report.LeadsAdded = len(leads)
	r.log.Info("discovery run finished",
		zap.String("run_id", report.RunID),
		zap.Int("leads_added", report.LeadsAdded),
	)
	return report, nil
}

// collect pages through one provider, filtering and accepting candidates into
// leads until the target is met, a page comes back empty, or the page ceiling
// is hit. Returns how many leads this provider contributed; a non-nil error
// means the provider itself failed.
func (r *Runner) collect(ctx context.Context, provider search.Provider, query string, known dedupe.DomainSet, leads *[]model.Lead, target int) (int, error) {
	added := 0
	for page := 0; page < r.maxPages; page++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return added, eris.Wrap(err, "scout: rate limit wait")
		}

		results, err := provider.Search(ctx, query, page)
		if err != nil {
			return added, eris.Wrapf(err, "scout: %s page %d", provider.Name(), page)
		}
		if len(results) == 0 {
			r.log.Debug("no more results",
				zap.String("provider", provider.Name()),
				zap.Int("page", page),
			)
			return added, nil
		}

		for _, res := range results {
			if res.URL == "" {
				continue
			}
			domain := dedupe.CanonicalDomain(res.URL)
			if domain == "" {
				r.log.Debug("skipping candidate without a canonical domain",
					zap.String("url", res.URL))
				continue
			}
			if r.blacklisted(domain) {
				continue
			}
			if known.Known(domain) {
				r.log.Debug("skipping known domain", zap.String("domain", domain))
				continue
			}

			known.Add(domain)
			*leads = append(*leads, model.NewLead(res.URL))
			added++
			r.log.Info("lead found",
				zap.String("provider", provider.Name()),
				zap.String("url", res.URL),
			)
			if len(*leads) >= target {
				return added, nil
			}
		}
	}

	r.log.Warn("page safety ceiling reached",
		zap.String("provider", provider.Name()),
		zap.Int("max_pages", r.maxPages),
	)
	return added, nil
}

func (r *Runner) blacklisted(domain string) bool {
	for _, bad := range r.blacklist {
		if strings.Contains(domain, bad) {
			return true
		}
	}
	return false
}
