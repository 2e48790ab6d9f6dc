// Package ledger persists the per-client lead and audit stores that back
// deduplication, outreach history, and resumable pipeline runs.
//
// Two named stores exist per client: the lead queue and the audit store.
// Every operation is scoped to one client key; there are no cross-client
// reads. The package assumes at most one pipeline run per client at a time;
// concurrent runs against the same key are undefined.
package ledger

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
)

// Ledger is the durable record set for one tenant universe. Load returns
// records in insertion order, Append adds to the tail (creating the backing
// store lazily), and Save rewrites the whole store.
type Ledger interface {
	LoadLeads(ctx context.Context, clientKey string) ([]model.Lead, error)
	AppendLeads(ctx context.Context, clientKey string, leads []model.Lead) error
	SaveLeads(ctx context.Context, clientKey string, leads []model.Lead) error

	LoadAudits(ctx context.Context, clientKey string) ([]model.Audit, error)
	AppendAudits(ctx context.Context, clientKey string, audits []model.Audit) error
	SaveAudits(ctx context.Context, clientKey string, audits []model.Audit) error

	// EnsureLeadStore guarantees the lead store exists (empty, header only)
	// so downstream stages never fail on a missing file.
	EnsureLeadStore(ctx context.Context, clientKey string) error

	Close() error
}

// Config selects and configures a ledger backend.
type Config struct {
	Driver string // "csv" or "sqlite"
	Dir    string // csv: directory holding the per-client files
	Path   string // sqlite: database file path
}

// New constructs the configured ledger backend.
func New(cfg Config) (Ledger, error) {
	switch cfg.Driver {
	case "", "csv":
		return NewCSVLedger(cfg.Dir), nil
	case "sqlite":
		return NewSQLiteLedger(cfg.Path)
	default:
		return nil, eris.Errorf("ledger: unknown driver %q", cfg.Driver)
	}
}
