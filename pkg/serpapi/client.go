// Package serpapi provides a client for the SerpAPI Google search endpoint.
package serpapi

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

const defaultBaseURL = "https://serpapi.com"

// Client performs searches against SerpAPI.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the query parameters for GET /search.
type SearchRequest struct {
	Query string
	Num   int // results per page
	Start int // result offset for pagination
}

// SearchResponse is the subset of the SerpAPI response the pipeline consumes.
// Google results arrive in two shapes: map-pack places and organic links.
type SearchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	LocalResults   LocalResults    `json:"local_results"`
	Error          string          `json:"error"`
}

// OrganicResult is a single organic search hit.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// LocalResults is the map-pack block.
type LocalResults struct {
	Places []Place `json:"places"`
}

// Place is a single map-pack entry.
type Place struct {
	Title   string `json:"title"`
	Website string `json:"website"`
	Address string `json:"address"`
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

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one page of a Google search. A provider-level failure (HTTP
// error or an "error" field in the body) is returned as an error so callers
// can distinguish it from zero results.
func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", req.Query)
	q.Set("api_key", c.apiKey)
	if req.Num > 0 {
		q.Set("num", strconv.Itoa(req.Num))
	}
	if req.Start > 0 {
		q.Set("start", strconv.Itoa(req.Start))
	}

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: search")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpapi: status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "serpapi: decode response")
	}
	if out.Error != "" {
		return nil, eris.Errorf("serpapi: provider error: %s", out.Error)
	}
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
