package summarize

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
)

// HeuristicSummarizer derives a pain-point sentence from keyword rules.
// It is the zero-cost terminal fallback and never fails.
type HeuristicSummarizer struct{}

// NewHeuristicSummarizer returns the rule-based summarizer.
func NewHeuristicSummarizer() *HeuristicSummarizer {
	return &HeuristicSummarizer{}
}

// Summarize applies the keyword rules in order and returns the first match.
// The final rule is unconditional, so a sentence always comes back.
func (h *HeuristicSummarizer) Summarize(_ context.Context, siteText string, _ profile.Profile) (string, error) {
	s := strings.ToLower(siteText)

	switch {
	case !strings.Contains(s, "contact"):
		zap.L().Debug("summarize: heuristic matched missing lead-capture rule")
		return "Your website has no visible lead-capture form on the homepage, potentially losing you an estimated $15,000 annually from missed conversion opportunities.", nil
	case strings.Contains(s, "book") && !strings.Contains(s, "online") && !strings.Contains(s, "book now"):
		zap.L().Debug("summarize: heuristic matched manual booking rule")
		return "Your site appears to use a manual booking process, potentially losing you an estimated $25,000 annually from customers who expect instant online scheduling.", nil
	case strings.Contains(s, "support") && !strings.Contains(s, "chat") && strings.Contains(s, "help"):
		zap.L().Debug("summarize: heuristic matched support flow rule")
		return "Your support page lacks an instant AI chat, potentially losing you an estimated $20,000 annually from unresolved customer questions.", nil
	default:
		return "Your website lacks a clear, instant lead-capture mechanism, potentially losing you an estimated $18,000 annually from missed opportunities.", nil
	}
}
