package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/serpapi"
)

// mockSerpAPI implements serpapi.Client for testing.
type mockSerpAPI struct {
	resp *serpapi.SearchResponse
	err  error
	last serpapi.SearchRequest
}

func (m *mockSerpAPI) Search(_ context.Context, req serpapi.SearchRequest) (*serpapi.SearchResponse, error) {
	m.last = req
	return m.resp, m.err
}

func TestSerpAPIProvider_NormalizesBothShapes(t *testing.T) {
	mock := &mockSerpAPI{resp: &serpapi.SearchResponse{
		OrganicResults: []serpapi.OrganicResult{
			{Link: "https://newroof.com", Title: "New Roof", Snippet: "Denver roofing"},
			{Link: ""},
		},
		LocalResults: serpapi.LocalResults{Places: []serpapi.Place{
			{Website: "https://acme-roof.com", Title: "Acme", Address: "Denver, CO"},
			{Website: ""},
		}},
	}}

	p := NewSerpAPIProvider(mock, 20)
	results, err := p.Search(context.Background(), `"Roofing" "Denver"`, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "https://acme-roof.com", results[0].URL, "map-pack results come first")
	assert.Equal(t, "https://newroof.com", results[1].URL)
	assert.Equal(t, 20, mock.last.Start, "page index maps to a 10-result offset")
}

func TestSerpAPIProvider_PropagatesProviderError(t *testing.T) {
	mock := &mockSerpAPI{err: eris.New("quota exhausted")}
	p := NewSerpAPIProvider(mock, 0)

	_, err := p.Search(context.Background(), "x", 0)
	assert.Error(t, err)
}
