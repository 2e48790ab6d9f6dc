// Package search abstracts the lead-search providers behind one interface so
// the discovery chain can fall through tiers without caring which engine
// answered.
package search

import "context"

// Result is one normalized search hit. URL is always set; Title and Snippet
// are best-effort.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Provider runs one page of a search. A returned error signals a
// provider-level failure (transport, quota, auth) and is distinguishable
// from an empty result page, which ends pagination without error.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, page int) ([]Result, error)
}
