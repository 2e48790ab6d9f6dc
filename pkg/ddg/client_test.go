package ddg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fnewroof.com%2F&amp;rut=abc">New Roof Co</a>
  <a class="result__snippet">Roofing in Denver since 1998.</a>
</div>
<div class="result">
  <a class="result__a" href="https://acme-roof.com/">Acme Roofing</a>
  <a class="result__snippet">Free estimates.</a>
</div>
<div class="result">
  <span class="result__a">no href here</span>
</div>
</body></html>`

func TestSearch_ParsesAndUnwrapsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"Roofing" "Denver"`, r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	results, err := c.Search(context.Background(), `"Roofing" "Denver"`)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://newroof.com/", results[0].URL)
	assert.Equal(t, "New Roof Co", results[0].Title)
	assert.Equal(t, "Roofing in Denver since 1998.", results[0].Snippet)
	assert.Equal(t, "https://acme-roof.com/", results[1].URL)
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="no-results">No results.</div></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	results, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestResolveRedirect(t *testing.T) {
	cases := map[string]string{
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage": "https://example.com/page",
		"https://direct.example.com/":                               "https://direct.example.com/",
		"%%%bad":                                                    "%%%bad",
	}
	for in, want := range cases {
		assert.Equal(t, want, resolveRedirect(in), "input %q", in)
	}
}
