package summarize

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/anthropic"
)

// mockSummarizer returns a fixed answer and counts calls.
type mockSummarizer struct {
	sentence string
	err      error
	calls    int
}

func (m *mockSummarizer) Summarize(context.Context, string, profile.Profile) (string, error) {
	m.calls++
	return m.sentence, m.err
}

func TestHeuristic_RuleOrder(t *testing.T) {
	h := NewHeuristicSummarizer()
	ctx := context.Background()

	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no contact mention",
			text: "We fix roofs. Call us.",
			want: "Your website has no visible lead-capture form on the homepage, potentially losing you an estimated $15,000 annually from missed conversion opportunities.",
		},
		{
			name: "manual booking",
			text: "Contact us to book an appointment by phone.",
			want: "Your site appears to use a manual booking process, potentially losing you an estimated $25,000 annually from customers who expect instant online scheduling.",
		},
		{
			name: "support without chat",
			text: "Contact our support team via the help desk.",
			want: "Your support page lacks an instant AI chat, potentially losing you an estimated $20,000 annually from unresolved customer questions.",
		},
		{
			name: "default fallback",
			text: "Contact page available. Live chat online, book now.",
			want: "Your website lacks a clear, instant lead-capture mechanism, potentially losing you an estimated $18,000 annually from missed opportunities.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.Summarize(ctx, tc.text, profile.Profile{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWithFallback_PrimaryWins(t *testing.T) {
	primary := &mockSummarizer{sentence: "model sentence"}
	fallback := &mockSummarizer{sentence: "heuristic sentence"}

	s := WithFallback(primary, fallback)
	got, err := s.Summarize(context.Background(), "text", profile.Profile{})

	require.NoError(t, err)
	assert.Equal(t, "model sentence", got)
	assert.Zero(t, fallback.calls)
}

func TestWithFallback_PrimaryErrorDegrades(t *testing.T) {
	primary := &mockSummarizer{err: eris.New("api down")}
	fallback := &mockSummarizer{sentence: "heuristic sentence"}

	s := WithFallback(primary, fallback)
	got, err := s.Summarize(context.Background(), "text", profile.Profile{})

	require.NoError(t, err)
	assert.Equal(t, "heuristic sentence", got)
	assert.Equal(t, 1, primary.calls)
}

func TestWithFallback_NilPrimary(t *testing.T) {
	fallback := &mockSummarizer{sentence: "heuristic sentence"}

	got, err := WithFallback(nil, fallback).Summarize(context.Background(), "text", profile.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "heuristic sentence", got)
}

// mockAnthropic implements anthropic.Client.
type mockAnthropic struct {
	resp *anthropic.MessageResponse
	err  error
	req  anthropic.MessageRequest
}

func (m *mockAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.req = req
	return m.resp, m.err
}

func TestAnthropicSummarizer_FirstLineOnly(t *testing.T) {
	mock := &mockAnthropic{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "The sentence.\nExtra commentary."}},
	}}

	s := NewAnthropicSummarizer(mock, "")
	got, err := s.Summarize(context.Background(), "site text", profile.Profile{CompanyName: "DBAI"})

	require.NoError(t, err)
	assert.Equal(t, "The sentence.", got)
	assert.Equal(t, anthropic.DefaultModel, mock.req.Model)
	assert.Contains(t, mock.req.Messages[0].Content, "site text")
}

func TestAnthropicSummarizer_EmptyResponseIsError(t *testing.T) {
	mock := &mockAnthropic{resp: &anthropic.MessageResponse{}}

	s := NewAnthropicSummarizer(mock, "claude-haiku-4-5-20251001")
	_, err := s.Summarize(context.Background(), "site text", profile.Profile{})
	assert.Error(t, err)
}
