package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ParsesBothResultShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, `"Roofing" "Denver"`, r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("start"))
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 1, "title": "New Roof Co", "link": "https://newroof.com", "snippet": "Roofing in Denver"}
			],
			"local_results": {
				"places": [
					{"title": "Acme Roofing", "website": "https://acme-roof.com", "address": "Denver, CO"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), SearchRequest{Query: `"Roofing" "Denver"`, Num: 20, Start: 20})
	require.NoError(t, err)
	require.Len(t, resp.OrganicResults, 1)
	assert.Equal(t, "https://newroof.com", resp.OrganicResults[0].Link)
	require.Len(t, resp.LocalResults.Places, 1)
	assert.Equal(t, "https://acme-roof.com", resp.LocalResults.Places[0].Website)
}

func TestSearch_ProviderErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Your searches for the month are exhausted."}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider error")
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSearch_EmptyResultsIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organic_results": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, resp.OrganicResults)
	assert.Empty(t, resp.LocalResults.Places)
}
