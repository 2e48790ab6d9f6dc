package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Acme Roofing</title><style>body { color: red }</style></head>
<body>
  <h1>Acme Roofing Denver</h1>
  <p>Quality roofs since 1998. Get a quote today.</p>
  <a href="mailto:info@acme-roof.com?subject=hi">Email us</a>
  <a href="https://facebook.com/acmeroof">Facebook</a>
  <a href="https://www.facebook.com/sharer/sharer.php?u=x">Share</a>
  <a href="https://linkedin.com/company/acmeroof">LinkedIn</a>
  <a href="/contact-us">Contact</a>
  <script>trackVisit()</script>
</body></html>`

func TestFetch_ExtractsTextSocialsAndContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL)
	require.NotNil(t, page)

	assert.Contains(t, page.Text, "Acme Roofing Denver")
	assert.Contains(t, page.Text, "info@acme-roof.com", "mailto addresses are appended to the text")
	assert.NotContains(t, page.Text, "trackVisit", "script content is stripped")

	assert.Equal(t, "https://facebook.com/acmeroof", page.Socials["Facebook"],
		"sharer links must not win over the profile link")
	assert.Equal(t, "https://linkedin.com/company/acmeroof", page.Socials["LinkedIn"])
	assert.Empty(t, page.Socials["Instagram"])
	assert.Equal(t, srv.URL+"/contact-us", page.ContactPage)
}

func TestFetch_TextCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>"))
		for i := 0; i < 500; i++ {
			_, _ = w.Write([]byte("lorem ipsum dolor sit amet "))
		}
		_, _ = w.Write([]byte("</body></html>"))
	}))
	defer srv.Close()

	page := New(WithMaxChars(100)).Fetch(context.Background(), srv.URL)
	require.NotNil(t, page)
	assert.LessOrEqual(t, len(page.Text), 100)
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<html><body>recovered content</body></html>"))
	}))
	defer srv.Close()

	page := New(WithRetries(1)).Fetch(context.Background(), srv.URL)
	require.NotNil(t, page)
	assert.Contains(t, page.Text, "recovered content")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_FailureReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	page := New(WithRetries(0)).Fetch(context.Background(), srv.URL)
	assert.Nil(t, page)
}

func TestFetch_UnreachableHostReturnsNil(t *testing.T) {
	page := New(WithRetries(0)).Fetch(context.Background(), "http://127.0.0.1:1")
	assert.Nil(t, page)
}
