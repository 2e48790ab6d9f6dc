package contact

import (
	"context"

	"go.uber.org/zap"
)

// Site is the input to the resolution chain: the lead's URL, its canonical
// domain, and whatever text the analyst already fetched.
type Site struct {
	URL    string
	Domain string
	Text   string
}

// Tactic is one tier of the waterfall. A Tactic returns ("", nil) when it
// finds nothing and an error only for provider-level failures; the chain
// treats both the same way and moves on.
type Tactic interface {
	Name() string
	Resolve(ctx context.Context, site Site) (string, error)
}

// Chain tries tactics in priority order, short-circuiting on the first
// address found. Adding, removing, or reordering tiers is a data change.
type Chain struct {
	tactics []Tactic
}

// NewChain creates a Chain over the given tactics.
func NewChain(tactics ...Tactic) *Chain {
	return &Chain{tactics: tactics}
}

// Resolve walks the tiers. Returns "" when every tier exhausts; a tier
// failure is logged and never propagates across the chain boundary.
func (c *Chain) Resolve(ctx context.Context, site Site) string {
	for _, tactic := range c.tactics {
		if ctx.Err() != nil {
			return ""
		}
		email, err := tactic.Resolve(ctx, site)
		if err != nil {
			zap.L().Debug("contact: tactic failed, trying next",
				zap.String("tactic", tactic.Name()),
				zap.String("domain", site.Domain),
				zap.Error(err),
			)
			continue
		}
		if email != "" {
			zap.L().Info("contact: email resolved",
				zap.String("tactic", tactic.Name()),
				zap.String("domain", site.Domain),
			)
			return email
		}
	}
	return ""
}
