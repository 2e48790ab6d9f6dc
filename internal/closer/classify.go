package closer

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/anthropic"
)

// Classifier buckets a reply body into a resolution status: Hot Lead,
// Not Interested, Dead, or the neutral Replied.
type Classifier interface {
	Classify(ctx context.Context, body string) (model.AuditStatus, error)
}

// Keyword groups checked in order of strength. An explicit opt-out beats a
// rejection, which beats buying signals, so a reply like "interested, but
// please unsubscribe me" still lands on Dead.
var (
	deadTerms = []string{
		"unsubscribe", "remove me", "stop emailing", "do not contact", "spam",
	}
	notInterestedTerms = []string{
		"not interested", "no thanks", "no thank you", "not a fit", "we're all set", "we are all set",
	}
	hotTerms = []string{
		"interested", "let's talk", "lets talk", "call me", "sounds good",
		"tell me more", "schedule", "book a", "pricing", "how much",
	}
)

// KeywordClassifier is the zero-cost classifier. It never fails.
type KeywordClassifier struct{}

// Classify implements Classifier.
func (KeywordClassifier) Classify(_ context.Context, body string) (model.AuditStatus, error) {
	s := strings.ToLower(body)
	switch {
	case containsAny(s, deadTerms):
		return model.StatusDead, nil
	case containsAny(s, notInterestedTerms):
		return model.StatusNotInterested, nil
	case containsAny(s, hotTerms):
		return model.StatusHotLead, nil
	default:
		return model.StatusReplied, nil
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

const classifySystemPrompt = `You triage replies to a cold outreach email. Read the reply and answer with exactly one word:
HOT - the sender shows buying interest or wants a call.
REJECT - the sender declines politely.
DEAD - the sender opts out, asks to be removed, or calls the email spam.
NEUTRAL - anything else.
Answer with the single word only.`

// AnthropicClassifier asks the model to triage a reply. Use WithFallback to
// pair it with the keyword classifier.
type AnthropicClassifier struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClassifier builds the model-backed classifier.
func NewAnthropicClassifier(client anthropic.Client, model string) *AnthropicClassifier {
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &AnthropicClassifier{client: client, model: model}
}

// Classify implements Classifier.
func (a *AnthropicClassifier) Classify(ctx context.Context, body string) (model.AuditStatus, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 8,
		System:    classifySystemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: body}},
	})
	if err != nil {
		return model.StatusReplied, eris.Wrap(err, "closer: classify reply")
	}

	switch strings.ToUpper(strings.TrimSpace(resp.FirstText())) {
	case "HOT":
		return model.StatusHotLead, nil
	case "REJECT":
		return model.StatusNotInterested, nil
	case "DEAD":
		return model.StatusDead, nil
	default:
		return model.StatusReplied, nil
	}
}

// fallbackClassifier degrades from the primary to the fallback on error.
type fallbackClassifier struct {
	primary  Classifier
	fallback Classifier
}

// WithFallback wraps a primary classifier with a fallback. A nil primary
// means the fallback always answers.
func WithFallback(primary, fallback Classifier) Classifier {
	return &fallbackClassifier{primary: primary, fallback: fallback}
}

// Classify implements Classifier.
func (c *fallbackClassifier) Classify(ctx context.Context, body string) (model.AuditStatus, error) {
	if c.primary != nil {
		status, err := c.primary.Classify(ctx, body)
		if err == nil {
			return status, nil
		}
		zap.L().Warn("closer: primary classifier failed, using keyword fallback", zap.Error(err))
	}
	return c.fallback.Classify(ctx, body)
}
