// Package summarize turns scraped site text into the single-sentence
// pain-point line used in outreach. Two implementations exist behind one
// interface: a remote model and a deterministic heuristic. Callers always
// get a sentence back and never know which one answered.
package summarize

import (
	"context"

	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
)

// Summarizer produces a one-sentence pain-point summary from site text.
type Summarizer interface {
	Summarize(ctx context.Context, siteText string, p profile.Profile) (string, error)
}

// fallbackSummarizer tries the primary and silently degrades to the
// fallback on error or empty output.
type fallbackSummarizer struct {
	primary  Summarizer
	fallback Summarizer
}

// WithFallback wraps a primary summarizer with a fallback. A nil primary
// means the fallback always answers.
func WithFallback(primary, fallback Summarizer) Summarizer {
	return &fallbackSummarizer{primary: primary, fallback: fallback}
}

// Summarize implements Summarizer.
func (s *fallbackSummarizer) Summarize(ctx context.Context, siteText string, p profile.Profile) (string, error) {
	if s.primary != nil {
		sentence, err := s.primary.Summarize(ctx, siteText, p)
		if err == nil && sentence != "" {
			return sentence, nil
		}
		if err != nil {
			zap.L().Warn("summarize: primary failed, using heuristic fallback", zap.Error(err))
		}
	}
	return s.fallback.Summarize(ctx, siteText, p)
}
