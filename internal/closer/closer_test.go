package closer

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailer"
)

// memLedger implements ledger.Ledger in memory.
type memLedger struct {
	audits    map[string][]model.Audit
	saveCalls int
}

func newMemLedger() *memLedger {
	return &memLedger{audits: map[string][]model.Audit{}}
}

func (m *memLedger) LoadLeads(context.Context, string) ([]model.Lead, error) { return nil, nil }
func (m *memLedger) AppendLeads(context.Context, string, []model.Lead) error { return nil }
func (m *memLedger) SaveLeads(context.Context, string, []model.Lead) error   { return nil }
func (m *memLedger) LoadAudits(_ context.Context, key string) ([]model.Audit, error) {
	return append([]model.Audit(nil), m.audits[key]...), nil
}
func (m *memLedger) AppendAudits(_ context.Context, key string, audits []model.Audit) error {
	m.audits[key] = append(m.audits[key], audits...)
	return nil
}
func (m *memLedger) SaveAudits(_ context.Context, key string, audits []model.Audit) error {
	m.saveCalls++
	m.audits[key] = append([]model.Audit(nil), audits...)
	return nil
}
func (m *memLedger) EnsureLeadStore(context.Context, string) error { return nil }
func (m *memLedger) Close() error                                  { return nil }

// mockMailbox serves canned reply state per address.
type mockMailbox struct {
	replies  map[string]string // address -> latest body ("" means no reply)
	err      error
	panicFor map[string]bool
}

func (m *mockMailbox) HasReplyFrom(_ context.Context, addr string) (bool, error) {
	if m.panicFor[addr] {
		panic("imap: use of closed connection")
	}
	if m.err != nil {
		return false, m.err
	}
	return m.replies[addr] != "", nil
}

func (m *mockMailbox) LatestBody(_ context.Context, addr string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.replies[addr], nil
}

func (m *mockMailbox) Close() error { return nil }

// mockMailer records follow-up sends.
type mockMailer struct {
	sent []mailer.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.sent = append(m.sent, msg)
	return false, nil
}

func testCloser(lg *memLedger, mb *mockMailbox, mm *mockMailer, opts ...Option) *Closer {
	opts = append(opts, WithThrottle(0, 0))
	c := NewCloser(lg, mb, mm, KeywordClassifier{}, opts...)
	c.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestRun_ReplyDetectedAndClassified(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://hot.com", Status: model.StatusSent, Email: "hot@a.com", SentDate: "2026-08-20"},
		{URL: "https://cold.com", Status: model.StatusSent, Email: "cold@b.com", SentDate: "2026-08-20"},
		{URL: "https://gone.com", Status: model.StatusSent, Email: "gone@c.com", SentDate: "2026-08-20"},
	}
	mb := &mockMailbox{replies: map[string]string{
		"hot@a.com":  "This sounds good, call me tomorrow",
		"cold@b.com": "Thanks but we're not interested",
		"gone@c.com": "Please unsubscribe me",
	}}
	mm := &mockMailer{}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Replies)
	assert.Equal(t, 1, report.HotLeads)
	assert.Equal(t, 1, report.NotInterested)
	assert.Equal(t, 1, report.Dead)
	assert.Equal(t, model.StatusHotLead, lg.audits["X"][0].Status)
	assert.Equal(t, model.StatusNotInterested, lg.audits["X"][1].Status)
	assert.Equal(t, model.StatusDead, lg.audits["X"][2].Status)
	assert.Empty(t, mm.sent)
}

func TestRun_SilenceTriggersOneFollowUp(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://quiet.com", Status: model.StatusSent, Email: "quiet@a.com", SentDate: "2026-08-20"},
	}
	mb := &mockMailbox{replies: map[string]string{}}
	mm := &mockMailer{}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 1, report.FollowUps)
	require.Len(t, mm.sent, 1)
	assert.Equal(t, "quiet@a.com", mm.sent[0].To)
	assert.Contains(t, mm.sent[0].Subject, "quiet.com")
	assert.Empty(t, mm.sent[0].AttachmentPath, "follow-ups carry no attachment")
	assert.Equal(t, model.StatusFollowedUp, lg.audits["X"][0].Status)

	// A second run over the followed-up record must not nudge again.
	mm2 := &mockMailer{}
	report2, err := testCloser(lg, mb, mm2).Run(context.Background(), "X")
	require.NoError(t, err)
	assert.Zero(t, report2.FollowUps)
	assert.Empty(t, mm2.sent)
	assert.Equal(t, model.StatusFollowedUp, lg.audits["X"][0].Status)
}

func TestRun_WaitingPeriodNotElapsed(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://fresh.com", Status: model.StatusSent, Email: "fresh@a.com", SentDate: "2026-08-30"},
	}
	mb := &mockMailbox{replies: map[string]string{}}
	mm := &mockMailer{}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Empty(t, mm.sent)
	assert.Zero(t, lg.saveCalls)
}

func TestRun_MailboxFailureAssumesReplied(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://a.com", Status: model.StatusSent, Email: "x@a.com", SentDate: "2026-08-20"},
	}
	mb := &mockMailbox{err: eris.New("imap connection reset")}
	mm := &mockMailer{}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Replies)
	assert.Empty(t, mm.sent, "never follow up when the mailbox cannot be verified")
	assert.Equal(t, model.StatusReplied, lg.audits["X"][0].Status)
}

func TestRun_PanicOnOneRecordDoesNotSinkBatch(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://bad.com", Status: model.StatusSent, Email: "boom@a.com", SentDate: "2026-08-20"},
		{URL: "https://hot.com", Status: model.StatusSent, Email: "hot@b.com", SentDate: "2026-08-20"},
	}
	mb := &mockMailbox{
		replies:  map[string]string{"hot@b.com": "This sounds good, call me"},
		panicFor: map[string]bool{"boom@a.com": true},
	}
	mm := &mockMailer{}

	var report *Report
	var err error
	require.NotPanics(t, func() {
		report, err = testCloser(lg, mb, mm).Run(context.Background(), "X")
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.HotLeads)
	assert.Equal(t, model.StatusSent, lg.audits["X"][0].Status, "panicking record stays checkable next run")
	assert.Equal(t, model.StatusHotLead, lg.audits["X"][1].Status, "later records still classified and saved")
	assert.Equal(t, 1, lg.saveCalls)
}

func TestRun_InvalidSentDateSkipped(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://bad.com", Status: model.StatusSent, Email: "x@a.com", SentDate: "31/08/2026"},
	}
	mb := &mockMailbox{replies: map[string]string{"x@a.com": "hello"}}
	mm := &mockMailer{}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Equal(t, model.StatusSent, lg.audits["X"][0].Status)
}

func TestRun_FollowUpSendFailureLeavesStatus(t *testing.T) {
	lg := newMemLedger()
	lg.audits["X"] = []model.Audit{
		{URL: "https://a.com", Status: model.StatusSent, Email: "x@a.com", SentDate: "2026-08-20"},
	}
	mb := &mockMailbox{replies: map[string]string{}}
	mm := &mockMailer{err: eris.New("smtp down")}

	report, err := testCloser(lg, mb, mm).Run(context.Background(), "X")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, model.StatusSent, lg.audits["X"][0].Status,
		"a failed follow-up stays Sent for the next run")
}

func TestKeywordClassifier_Precedence(t *testing.T) {
	c := KeywordClassifier{}
	ctx := context.Background()

	status, err := c.Classify(ctx, "I'm interested but please unsubscribe me from this list")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDead, status, "opt-out beats buying signal")

	status, _ = c.Classify(ctx, "Sounds good, what's the pricing?")
	assert.Equal(t, model.StatusHotLead, status)

	status, _ = c.Classify(ctx, "no thanks")
	assert.Equal(t, model.StatusNotInterested, status)

	status, _ = c.Classify(ctx, "Who is this?")
	assert.Equal(t, model.StatusReplied, status)
}

func TestWithFallback_PrimaryErrorDegrades(t *testing.T) {
	primary := classifierFunc(func(context.Context, string) (model.AuditStatus, error) {
		return model.StatusReplied, eris.New("api down")
	})

	c := WithFallback(primary, KeywordClassifier{})
	status, err := c.Classify(context.Background(), "call me")

	require.NoError(t, err)
	assert.Equal(t, model.StatusHotLead, status)
}

type classifierFunc func(context.Context, string) (model.AuditStatus, error)

func (f classifierFunc) Classify(ctx context.Context, body string) (model.AuditStatus, error) {
	return f(ctx, body)
}
