package search

import (
	"context"

	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/ddg"
)

// DDGProvider adapts pkg/ddg to the Provider interface. The HTML endpoint
// has no pagination worth trusting, so only page 0 returns results; later
// pages are empty, which ends pagination naturally.
type DDGProvider struct {
	client ddg.Client
}

// NewDDGProvider creates the zero-cost last-resort search provider.
func NewDDGProvider(client ddg.Client) *DDGProvider {
	return &DDGProvider{client: client}
}

// Name implements Provider.
func (p *DDGProvider) Name() string { return "duckduckgo" }

// Search implements Provider.
func (p *DDGProvider) Search(ctx context.Context, query string, page int) ([]Result, error) {
	if page > 0 {
		return nil, nil
	}
	hits, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		results = append(results, Result{
			URL:     hit.URL,
			Title:   hit.Title,
			Snippet: hit.Snippet,
		})
	}
	return results, nil
}
