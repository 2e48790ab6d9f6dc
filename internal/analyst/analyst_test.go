package analyst

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/contact"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/fetch"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
)

// memLedger implements ledger.Ledger in memory.
type memLedger struct {
	leads     map[string][]model.Lead
	audits    map[string][]model.Audit
	saveCalls int
}

func newMemLedger() *memLedger {
	return &memLedger{leads: map[string][]model.Lead{}, audits: map[string][]model.Audit{}}
}

func (m *memLedger) LoadLeads(_ context.Context, key string) ([]model.Lead, error) {
	return append([]model.Lead(nil), m.leads[key]...), nil
}

func (m *memLedger) AppendLeads(_ context.Context, key string, leads []model.Lead) error {
	m.leads[key] = append(m.leads[key], leads...)
	return nil
}

func (m *memLedger) SaveLeads(_ context.Context, key string, leads []model.Lead) error {
	m.saveCalls++
	m.leads[key] = leads
	return nil
}

func (m *memLedger) LoadAudits(_ context.Context, key string) ([]model.Audit, error) {
	return append([]model.Audit(nil), m.audits[key]...), nil
}

func (m *memLedger) AppendAudits(_ context.Context, key string, audits []model.Audit) error {
	m.audits[key] = append(m.audits[key], audits...)
	return nil
}

func (m *memLedger) SaveAudits(_ context.Context, key string, audits []model.Audit) error {
	m.audits[key] = audits
	return nil
}

func (m *memLedger) EnsureLeadStore(context.Context, string) error { return nil }
func (m *memLedger) Close() error                                  { return nil }

// mockFetcher serves pages by URL.
type mockFetcher struct {
	pages map[string]*fetch.Page
}

func (m *mockFetcher) Fetch(_ context.Context, url string) *fetch.Page {
	return m.pages[url]
}

// mockSummarizer returns a fixed sentence, optionally failing for texts
// containing a trigger substring.
type mockSummarizer struct {
	sentence    string
	failTrigger string
	lastText    string
}

func (m *mockSummarizer) Summarize(_ context.Context, text string, _ profile.Profile) (string, error) {
	m.lastText = text
	if m.failTrigger != "" && strings.Contains(text, m.failTrigger) {
		return "", eris.New("summarizer exploded")
	}
	return m.sentence, nil
}

// mockResolver returns emails by domain.
type mockResolver struct {
	emails map[string]string
}

func (m *mockResolver) Resolve(_ context.Context, site contact.Site) string {
	return m.emails[site.Domain]
}

func newAnalyzer(lg *memLedger, f *mockFetcher, s *mockSummarizer, r *mockResolver, opts ...Option) *Analyzer {
	reg, _ := profile.Load("")
	return NewAnalyzer(lg, f, s, r, reg, opts...)
}

func TestRun_StatusPriorityRule(t *testing.T) {
	lg := newMemLedger()
	lg.leads["X"] = []model.Lead{
		model.NewLead("https://hasemail.com"),
		model.NewLead("https://hassocial.com"),
		model.NewLead("https://hasform.com"),
		model.NewLead("https://nothing.com"),
	}

	fetcher := &mockFetcher{pages: map[string]*fetch.Page{
		"https://hasemail.com":  {Text: "welcome, contact info@hasemail.com"},
		"https://hassocial.com": {Text: "welcome", Socials: map[string]string{"Instagram": "https://instagram.com/biz"}},
		"https://hasform.com":   {Text: "welcome", ContactPage: "https://hasform.com/contact"},
		"https://nothing.com":   {Text: "welcome"},
	}}
	resolver := &mockResolver{emails: map[string]string{"hasemail.com": "info@hasemail.com"}}

	a := newAnalyzer(lg, fetcher, &mockSummarizer{sentence: "pain"}, resolver)
	report, err := a.Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 4, report.AuditsCreated)

	byURL := map[string]model.Audit{}
	for _, audit := range lg.audits["X"] {
		byURL[audit.URL] = audit
	}
	assert.Equal(t, model.StatusAnalyzed, byURL["https://hasemail.com"].Status)
	assert.Equal(t, "info@hasemail.com", byURL["https://hasemail.com"].Email)
	assert.Equal(t, model.StatusRequiresDM, byURL["https://hassocial.com"].Status)
	assert.Equal(t, model.StatusUseForm, byURL["https://hasform.com"].Status)
	assert.Equal(t, model.StatusDeadEnd, byURL["https://nothing.com"].Status)

	for _, lead := range lg.leads["X"] {
		assert.Equal(t, model.LeadProcessed, lead.Status)
	}
}

func TestRun_UnfetchableSiteStillGetsAudit(t *testing.T) {
	lg := newMemLedger()
	lg.leads["X"] = []model.Lead{model.NewLead("https://down.com")}

	a := newAnalyzer(lg, &mockFetcher{pages: map[string]*fetch.Page{}},
		&mockSummarizer{sentence: "pain"}, &mockResolver{})
	report, err := a.Run(context.Background(), "X")

	require.NoError(t, err)
	require.Equal(t, 1, report.AuditsCreated)
	audit := lg.audits["X"][0]
	assert.Equal(t, model.StatusDeadEnd, audit.Status)
	assert.Equal(t, "Could not fetch site content", audit.PainPointSummary)
	assert.Equal(t, model.LeadProcessed, lg.leads["X"][0].Status)
}

func TestRun_IdempotentResume(t *testing.T) {
	lg := newMemLedger()
	lg.leads["X"] = []model.Lead{
		{URL: "https://done.com", Status: model.LeadProcessed},
		{URL: "https://also-done.com", Status: model.LeadProcessed},
	}

	a := newAnalyzer(lg, &mockFetcher{pages: map[string]*fetch.Page{}},
		&mockSummarizer{sentence: "pain"}, &mockResolver{})
	report, err := a.Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Zero(t, report.AuditsCreated)
	assert.Zero(t, report.Analyzed)
	assert.Zero(t, lg.saveCalls, "untouched queue must not be rewritten")
	assert.Empty(t, lg.audits["X"])
}

func TestRun_DeepContextConcatenatedAndCapped(t *testing.T) {
	lg := newMemLedger()
	lg.leads["X"] = []model.Lead{model.NewLead("https://biz.com")}

	fetcher := &mockFetcher{pages: map[string]*fetch.Page{
		"https://biz.com":          {Text: "homepage text"},
		"https://biz.com/services": {Text: "services text"},
		"https://biz.com/faq":      {Text: strings.Repeat("q", 500)},
	}}
	summarizer := &mockSummarizer{sentence: "pain"}

	a := newAnalyzer(lg, fetcher, summarizer, &mockResolver{}, WithMaxCombinedChars(120))
	_, err := a.Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Contains(t, summarizer.lastText, "--- HOMEPAGE ---")
	assert.Contains(t, summarizer.lastText, "homepage text")
	assert.Contains(t, summarizer.lastText, "--- /SERVICES ---")
	assert.LessOrEqual(t, len(summarizer.lastText), 120)
}

func TestRun_OneBadRecordDoesNotSinkBatch(t *testing.T) {
	lg := newMemLedger()
	lg.leads["X"] = []model.Lead{
		model.NewLead("https://poison.com"),
		model.NewLead("https://fine.com"),
	}

	fetcher := &mockFetcher{pages: map[string]*fetch.Page{
		"https://poison.com": {Text: "POISON content"},
		"https://fine.com":   {Text: "healthy content"},
	}}
	summarizer := &mockSummarizer{sentence: "pain", failTrigger: "POISON"}

	a := newAnalyzer(lg, fetcher, summarizer, &mockResolver{})
	report, err := a.Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.AuditsCreated)
	assert.Equal(t, "https://fine.com", lg.audits["X"][0].URL)

	// The failed lead stays Unscanned for the next run.
	assert.Equal(t, model.LeadUnscanned, lg.leads["X"][0].Status)
	assert.Equal(t, model.LeadProcessed, lg.leads["X"][1].Status)
}
