package search

import (
	"context"

	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/brave"
)

// BraveProvider adapts pkg/brave to the Provider interface. It is the first
// fallback tier when SerpAPI fails at the provider level.
type BraveProvider struct {
	client brave.Client
}

// NewBraveProvider creates the fallback search provider.
func NewBraveProvider(client brave.Client) *BraveProvider {
	return &BraveProvider{client: client}
}

// Name implements Provider.
func (p *BraveProvider) Name() string { return "brave" }

// Search implements Provider.
func (p *BraveProvider) Search(ctx context.Context, query string, page int) ([]Result, error) {
	resp, err := p.client.WebSearch(ctx, query, page)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Web.Results))
	for _, hit := range resp.Web.Results {
		if hit.URL == "" {
			continue
		}
		results = append(results, Result{
			URL:     hit.URL,
			Title:   hit.Title,
			Snippet: hit.Description,
		})
	}
	return results, nil
}
