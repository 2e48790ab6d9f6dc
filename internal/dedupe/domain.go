// Package dedupe derives canonical domain identities and maintains the
// known-domain set that guarantees zero repeated outreach across sessions.
package dedupe

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
)

// CanonicalDomain derives the deduplication identity of a URL: the lowercased
// host with a leading "www." stripped. Returns "" for unparseable input;
// callers must treat an empty identity as "do not dedup on it".
func CanonicalDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		// Bare "acme.com/page" style input parses as a path; retry with a scheme.
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	}
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// DomainSet is the in-memory union of every domain a client already knows
// about. It is mutated in place as leads are accepted, so dedup checks later
// in the same run see earlier acceptances without a store round-trip.
type DomainSet map[string]struct{}

// NewDomainSet creates an empty set.
func NewDomainSet() DomainSet {
	return make(DomainSet)
}

// Add inserts a canonical domain. Empty identities are ignored.
func (s DomainSet) Add(domain string) {
	if domain == "" {
		return
	}
	s[domain] = struct{}{}
}

// Known reports whether the domain has been seen. Empty identities are never known.
func (s DomainSet) Known(domain string) bool {
	if domain == "" {
		return false
	}
	_, ok := s[domain]
	return ok
}

// Len returns the number of known domains.
func (s DomainSet) Len() int { return len(s) }

// BuildKnownSet unions the canonical domains of every URL-bearing record in
// both of the client's stores. This is the "Ironclad Ledger" view: rebuilt
// fresh at the start of each discovery run, never persisted directly.
func BuildKnownSet(ctx context.Context, lg ledger.Ledger, clientKey string) (DomainSet, error) {
	set := NewDomainSet()

	leads, err := lg.LoadLeads(ctx, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "dedupe: load leads")
	}
	for _, lead := range leads {
		set.Add(CanonicalDomain(lead.URL))
	}

	audits, err := lg.LoadAudits(ctx, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "dedupe: load audits")
	}
	for _, audit := range audits {
		set.Add(CanonicalDomain(audit.URL))
	}

	zap.L().Debug("dedupe: known-domain set built",
		zap.String("client_key", clientKey),
		zap.Int("domains", set.Len()),
	)
	return set, nil
}
