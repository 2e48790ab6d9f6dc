// Package fetch retrieves a business website's visible text along with the
// social profile links, mailto addresses, and contact-page link found in its
// anchors. Fetch failures degrade to a nil page rather than an error: the
// analyst treats an unreachable site as a fact about the lead, not a fault
// in the batch.
package fetch

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Page is the extracted view of one fetched URL.
type Page struct {
	// Text is the collapsed visible text, capped at the configured length,
	// with any discovered mailto addresses appended so downstream email
	// extraction sees them.
	Text string
	// Socials maps platform name (Facebook, LinkedIn, Instagram, Twitter)
	// to the first matching profile link.
	Socials map[string]string
	// ContactPage is the first contact-looking link, resolved absolute.
	ContactPage string
}

// Fetcher fetches pages with a fixed timeout, limited retries, and a rotating
// User-Agent pool.
type Fetcher struct {
	client   *http.Client
	retries  int
	maxChars int
	agents   []string
}

// defaultAgents mirrors a small pool of common desktop browser strings.
var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithRetries sets how many times a failed fetch is retried.
func WithRetries(n int) Option {
	return func(f *Fetcher) { f.retries = n }
}

// WithMaxChars caps the extracted text length.
func WithMaxChars(n int) Option {
	return func(f *Fetcher) { f.maxChars = n }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.client = hc }
}

// New creates a Fetcher with a 15s timeout, one retry, and a 4000-char cap.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		retries:  1,
		maxChars: 4000,
		agents:   defaultAgents,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses a URL. Returns nil when the page cannot be
// fetched or yields no text after all retries; it never returns an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Page {
	log := zap.L().With(zap.String("url", rawURL))

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return nil
			}
		}

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page
		}
		if attempt < f.retries {
			log.Debug("fetch: attempt failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		} else {
			log.Warn("fetch: giving up", zap.Int("attempts", attempt+1), zap.Error(err))
		}
	}
	return nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.agents[rand.Intn(len(f.agents))])

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base := resp.Request.URL
	page := &Page{Socials: map[string]string{}}
	var mailtos []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)

		switch {
		case strings.HasPrefix(lower, "mailto:"):
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if addr != "" {
				mailtos = append(mailtos, addr)
			}
			return
		case strings.Contains(lower, "facebook.com") && !strings.Contains(lower, "sharer"):
			setFirst(page.Socials, "Facebook", href)
		case strings.Contains(lower, "linkedin.com") && !strings.Contains(lower, "share"):
			setFirst(page.Socials, "LinkedIn", href)
		case strings.Contains(lower, "instagram.com"):
			setFirst(page.Socials, "Instagram", href)
		case strings.Contains(lower, "twitter.com"), strings.Contains(lower, "x.com"):
			setFirst(page.Socials, "Twitter", href)
		}

		if page.ContactPage == "" && strings.Contains(lower, "contact") {
			page.ContactPage = resolveHref(base, href)
		}
	})

	doc.Find("script, style, noscript").Remove()
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		return nil, eris.New("fetch: no text content")
	}
	if len(text) > f.maxChars {
		text = text[:f.maxChars]
	}
	if len(mailtos) > 0 {
		text += " " + strings.Join(mailtos, " ")
	}
	page.Text = text
	return page, nil
}

func setFirst(m map[string]string, key, val string) {
	if m[key] == "" {
		m[key] = val
	}
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

