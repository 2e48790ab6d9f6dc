// Package brave provides a client for the Brave Search web API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// Client performs web searches against the Brave Search API.
type Client interface {
	WebSearch(ctx context.Context, query string, offset int) (*WebSearchResponse, error)
}

// WebSearchResponse is the subset of the Brave response the pipeline consumes.
type WebSearchResponse struct {
	Web WebResults `json:"web"`
}

// WebResults holds the organic web hits.
type WebResults struct {
	Results []WebResult `json:"results"`
}

// WebResult is a single web search hit.
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Brave Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebSearch runs one page of a web search. Offset is the zero-based page index.
func (c *httpClient) WebSearch(ctx context.Context, query string, offset int) (*WebSearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	endpoint := fmt.Sprintf("%s/web/search?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "brave: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "brave: web search")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "brave: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("brave: status %d", resp.StatusCode)
	}

	var out WebSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "brave: decode response")
	}
	return &out, nil
}
