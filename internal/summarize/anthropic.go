package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/anthropic"
)

const summarySystemPrompt = `You are a top-tier AI Automation Consultant analyzing a local business's website from the provided text.
Your task is to identify the most significant "Revenue Leak" - a clear inefficiency where the business is losing money due to a lack of automation.
Scan for these specific weaknesses:
- Absence of AI automation (no chatbots for instant customer service, no automated booking or quoting systems).
- Slow site performance or poor mobile optimization, inferred from text cues.
- Underutilized lead capture (only a contact form, no immediate callback widgets, no lead magnets).
Based on the single most critical weakness you find:
1. Calculate a realistic "Projected ROI" figure if they were to automate this gap, framed as an annual projection.
2. Synthesize your finding and the ROI into a single, hard-hitting sentence for a cold email.
   Format: "[Identified Weakness], potentially losing you an estimated [Projected ROI] annually."
CRUCIAL: Output only this single sentence. Nothing else.`

const summaryMaxTokens = 256

// AnthropicSummarizer asks the model for a pain-point sentence.
type AnthropicSummarizer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicSummarizer builds the model-backed summarizer. An empty model
// falls back to the package default.
func NewAnthropicSummarizer(client anthropic.Client, model string) *AnthropicSummarizer {
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &AnthropicSummarizer{client: client, model: model}
}

// Summarize implements Summarizer. Only the first line of the model output
// is kept, matching the one-sentence contract of the prompt.
func (a *AnthropicSummarizer) Summarize(ctx context.Context, siteText string, p profile.Profile) (string, error) {
	prompt := fmt.Sprintf("The client offering the automation fix is %s (%s).\n\nWebsite Text:\n%s",
		p.CompanyName, p.Industry, siteText)

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: summaryMaxTokens,
		System:    summarySystemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", eris.Wrap(err, "summarize: anthropic request")
	}

	text := strings.TrimSpace(resp.FirstText())
	if text == "" {
		return "", eris.New("summarize: empty model response")
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return text, nil
}
