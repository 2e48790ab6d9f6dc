package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/fetch"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/search"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/hunter"
)

// PageFetcher is the narrow fetch contract the sub-page tactic needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) *fetch.Page
}

// emailSubPaths are the likely contact-bearing sub-pages, probed in order.
var emailSubPaths = []string{
	"/contact", "/about", "/contact-us", "/about-us", "/support", "/team", "/privacy",
}

// TextTactic extracts an address from the text the analyst already fetched.
// Tier 1: no network traffic.
type TextTactic struct{}

// Name implements Tactic.
func (TextTactic) Name() string { return "page_text" }

// Resolve implements Tactic.
func (TextTactic) Resolve(_ context.Context, site Site) (string, error) {
	return ExtractEmail(site.Text), nil
}

// SubPageTactic fetches likely sub-paths off the site root and extracts from
// each, stopping at the first hit. Tier 2.
type SubPageTactic struct {
	fetcher PageFetcher
	paths   []string
}

// NewSubPageTactic creates the sub-page tactic. A nil path list uses the defaults.
func NewSubPageTactic(fetcher PageFetcher, paths []string) *SubPageTactic {
	if len(paths) == 0 {
		paths = emailSubPaths
	}
	return &SubPageTactic{fetcher: fetcher, paths: paths}
}

// Name implements Tactic.
func (t *SubPageTactic) Name() string { return "sub_pages" }

// Resolve implements Tactic.
func (t *SubPageTactic) Resolve(ctx context.Context, site Site) (string, error) {
	root := strings.TrimRight(site.URL, "/")
	for _, path := range t.paths {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		page := t.fetcher.Fetch(ctx, root+path)
		if page == nil {
			continue
		}
		if email := ExtractEmail(page.Text); email != "" {
			return email, nil
		}
	}
	return "", nil
}

// SearchTactic queries a search provider for the domain plus contact-intent
// keywords and extracts from the result snippets. Tiers 3 and 4 are this
// tactic over different providers.
type SearchTactic struct {
	provider search.Provider
}

// NewSearchTactic creates a search-snippet tactic over the given provider.
func NewSearchTactic(provider search.Provider) *SearchTactic {
	return &SearchTactic{provider: provider}
}

// Name implements Tactic.
func (t *SearchTactic) Name() string { return "search_" + t.provider.Name() }

// Resolve implements Tactic.
func (t *SearchTactic) Resolve(ctx context.Context, site Site) (string, error) {
	if site.Domain == "" {
		return "", nil
	}
	query := fmt.Sprintf(`"%s" contact email`, site.Domain)
	results, err := t.provider.Search(ctx, query, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.Title)
		sb.WriteByte(' ')
		sb.WriteString(r.Snippet)
		sb.WriteByte(' ')
	}
	return ExtractEmail(sb.String()), nil
}

// HunterTactic asks the commercial enrichment API for an address by domain.
// Tier 5: the paid last resort.
type HunterTactic struct {
	client hunter.Client
}

// NewHunterTactic creates the enrichment tactic.
func NewHunterTactic(client hunter.Client) *HunterTactic {
	return &HunterTactic{client: client}
}

// Name implements Tactic.
func (t *HunterTactic) Name() string { return "hunter" }

// Resolve implements Tactic.
func (t *HunterTactic) Resolve(ctx context.Context, site Site) (string, error) {
	if site.Domain == "" {
		return "", nil
	}
	resp, err := t.client.DomainSearch(ctx, site.Domain)
	if err != nil {
		return "", err
	}
	return resp.FirstEmail(), nil
}
