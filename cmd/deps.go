package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/analyst"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/closer"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/contact"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/fetch"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/ledger"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/search"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/sniper"
	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/summarize"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/anthropic"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/brave"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/ddg"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/hunter"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailer"
	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/serpapi"
)

// clientKey reads the persistent --client-key flag.
func clientKey(cmd *cobra.Command) string {
	key, _ := cmd.Flags().GetString("client-key")
	if key == "" {
		key = "default"
	}
	return key
}

// openLedger builds the configured ledger backend.
func openLedger() (ledger.Ledger, error) {
	return ledger.New(ledger.Config{
		Driver: cfg.Store.Driver,
		Dir:    cfg.Store.Dir,
		Path:   cfg.Store.Path,
	})
}

// loadProfiles reads the client profile registry.
func loadProfiles() (*profile.Registry, error) {
	return profile.Load(cfg.Profiles.Path)
}

// searchProviders assembles the discovery fallback chain from whatever is
// configured: SerpAPI first, Brave second, the zero-cost scraper always last.
func searchProviders() []search.Provider {
	var providers []search.Provider
	if cfg.SerpAPI.Key != "" {
		providers = append(providers, search.NewSerpAPIProvider(serpapi.NewClient(cfg.SerpAPI.Key), 20))
	}
	if cfg.Brave.Key != "" {
		providers = append(providers, search.NewBraveProvider(brave.NewClient(cfg.Brave.Key)))
	}
	providers = append(providers, search.NewDDGProvider(ddg.NewClient()))
	return providers
}

// hunterClient returns the enrichment client, or nil when unconfigured.
func hunterClient() hunter.Client {
	if cfg.Hunter.Key == "" {
		return nil
	}
	return hunter.NewClient(cfg.Hunter.Key)
}

// anthropicClient returns the model client, or nil when unconfigured.
func anthropicClient() anthropic.Client {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	return anthropic.NewClient(cfg.Anthropic.Key)
}

// buildSummarizer composes the model summarizer over the heuristic fallback.
func buildSummarizer() summarize.Summarizer {
	heuristic := summarize.NewHeuristicSummarizer()
	if client := anthropicClient(); client != nil {
		return summarize.WithFallback(
			summarize.NewAnthropicSummarizer(client, cfg.Anthropic.Model), heuristic)
	}
	return summarize.WithFallback(nil, heuristic)
}

// buildClassifier composes the reply classifier the same way.
func buildClassifier() closer.Classifier {
	keyword := closer.KeywordClassifier{}
	if client := anthropicClient(); client != nil {
		return closer.WithFallback(closer.NewAnthropicClassifier(client, cfg.Anthropic.Model), keyword)
	}
	return closer.WithFallback(nil, keyword)
}

// buildAnalyzer wires the analysis stage from config.
func buildAnalyzer(lg ledger.Ledger) (*analyst.Analyzer, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(
		fetch.WithTimeout(time.Duration(cfg.Analyst.FetchTimeoutSecs)*time.Second),
		fetch.WithRetries(cfg.Analyst.FetchRetries),
	)

	tactics := []contact.Tactic{
		contact.TextTactic{},
		contact.NewSubPageTactic(fetcher, nil),
	}
	for _, provider := range searchProviders() {
		tactics = append(tactics, contact.NewSearchTactic(provider))
	}
	if h := hunterClient(); h != nil {
		tactics = append(tactics, contact.NewHunterTactic(h))
	}

	return analyst.NewAnalyzer(lg, fetcher, buildSummarizer(), contact.NewChain(tactics...), profiles,
		analyst.WithMaxCombinedChars(cfg.Analyst.MaxCombinedChars),
	), nil
}

// buildMailer constructs the SMTP transport and the sender identity.
func buildMailer() (mailer.Mailer, sniper.Sender, error) {
	m, err := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return nil, sniper.Sender{}, eris.Wrap(err, "smtp transport")
	}
	return m, sniper.Sender{Name: cfg.Sniper.SenderName, Phone: cfg.Sniper.SenderPhone}, nil
}
