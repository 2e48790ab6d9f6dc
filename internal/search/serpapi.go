package search

import (
	"context"

	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/serpapi"
)

// pageSize is the number of organic results requested per SerpAPI page.
// Google paginates in steps of 10 regardless of the num parameter.
const pageSize = 10

// SerpAPIProvider adapts pkg/serpapi to the Provider interface, flattening
// the map-pack and organic result shapes into one candidate list.
type SerpAPIProvider struct {
	client serpapi.Client
	num    int
}

// NewSerpAPIProvider creates the primary search provider. num is the
// per-page result count hint (defaults to 20 like the serp console).
func NewSerpAPIProvider(client serpapi.Client, num int) *SerpAPIProvider {
	if num <= 0 {
		num = 20
	}
	return &SerpAPIProvider{client: client, num: num}
}

// Name implements Provider.
func (p *SerpAPIProvider) Name() string { return "serpapi" }

// Search implements Provider. Map-pack places come first: a business in the
// local pack is a stronger geographic match than an organic hit.
func (p *SerpAPIProvider) Search(ctx context.Context, query string, page int) ([]Result, error) {
	resp, err := p.client.Search(ctx, serpapi.SearchRequest{
		Query: query,
		Num:   p.num,
		Start: page * pageSize,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.LocalResults.Places)+len(resp.OrganicResults))
	for _, place := range resp.LocalResults.Places {
		if place.Website == "" {
			continue
		}
		results = append(results, Result{
			URL:     place.Website,
			Title:   place.Title,
			Snippet: place.Address,
		})
	}
	for _, organic := range resp.OrganicResults {
		if organic.Link == "" {
			continue
		}
		results = append(results, Result{
			URL:     organic.Link,
			Title:   organic.Title,
			Snippet: organic.Snippet,
		})
	}
	return results, nil
}
