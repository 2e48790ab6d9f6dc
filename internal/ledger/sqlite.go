package ledger

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
)

// SQLiteLedger implements Ledger on modernc.org/sqlite. It keeps the same
// load/append/save contract as the CSV backend, with real per-statement
// durability instead of whole-file rewrites.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) the database, configures WAL mode, and
// applies the schema.
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	if dsn == "" {
		dsn = "saleswarm.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "ledger: exec %s", pragma)
		}
	}
	l := &SQLiteLedger{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	client_key TEXT NOT NULL,
	url        TEXT NOT NULL,
	status     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audits (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	client_key     TEXT NOT NULL,
	url            TEXT NOT NULL,
	pain_point     TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	facebook       TEXT NOT NULL DEFAULT '',
	linkedin       TEXT NOT NULL DEFAULT '',
	instagram      TEXT NOT NULL DEFAULT '',
	twitter        TEXT NOT NULL DEFAULT '',
	contact_page   TEXT NOT NULL DEFAULT '',
	sent_date      TEXT NOT NULL DEFAULT '',
	audit_attached INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_client ON leads(client_key);
CREATE INDEX IF NOT EXISTS idx_audits_client ON audits(client_key);
CREATE INDEX IF NOT EXISTS idx_audits_status ON audits(client_key, status);
`

func (l *SQLiteLedger) migrate() error {
	_, err := l.db.Exec(sqliteMigration)
	return eris.Wrap(err, "ledger: migrate sqlite")
}

// LoadLeads returns the client's leads in insertion order.
func (l *SQLiteLedger) LoadLeads(ctx context.Context, clientKey string) ([]model.Lead, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT url, status FROM leads WHERE client_key = ? ORDER BY id`, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: query leads")
	}
	defer func() { _ = rows.Close() }()

	var leads []model.Lead
	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(&lead.URL, &lead.Status); err != nil {
			return nil, eris.Wrap(err, "ledger: scan lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "ledger: iterate leads")
}

// AppendLeads inserts leads at the tail of the client's queue.
func (l *SQLiteLedger) AppendLeads(ctx context.Context, clientKey string, leads []model.Lead) error {
	return l.inTx(ctx, func(tx *sql.Tx) error {
		for _, lead := range leads {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO leads (client_key, url, status) VALUES (?, ?, ?)`,
				clientKey, lead.URL, lead.Status); err != nil {
				return eris.Wrap(err, "ledger: insert lead")
			}
		}
		return nil
	})
}

// SaveLeads replaces the client's lead queue wholesale.
func (l *SQLiteLedger) SaveLeads(ctx context.Context, clientKey string, leads []model.Lead) error {
	return l.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM leads WHERE client_key = ?`, clientKey); err != nil {
			return eris.Wrap(err, "ledger: clear leads")
		}
		for _, lead := range leads {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO leads (client_key, url, status) VALUES (?, ?, ?)`,
				clientKey, lead.URL, lead.Status); err != nil {
				return eris.Wrap(err, "ledger: insert lead")
			}
		}
		return nil
	})
}

// LoadAudits returns the client's audits in insertion order.
func (l *SQLiteLedger) LoadAudits(ctx context.Context, clientKey string) ([]model.Audit, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT url, pain_point, status, email, facebook, linkedin, instagram,
		       twitter, contact_page, sent_date, audit_attached
		FROM audits WHERE client_key = ? ORDER BY id`, clientKey)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: query audits")
	}
	defer func() { _ = rows.Close() }()

	var audits []model.Audit
	for rows.Next() {
		var a model.Audit
		if err := rows.Scan(&a.URL, &a.PainPointSummary, &a.Status, &a.Email,
			&a.Facebook, &a.LinkedIn, &a.Instagram, &a.Twitter,
			&a.ContactPage, &a.SentDate, &a.AuditAttached); err != nil {
			return nil, eris.Wrap(err, "ledger: scan audit")
		}
		audits = append(audits, a)
	}
	return audits, eris.Wrap(rows.Err(), "ledger: iterate audits")
}

// AppendAudits inserts audits at the tail of the client's store.
func (l *SQLiteLedger) AppendAudits(ctx context.Context, clientKey string, audits []model.Audit) error {
	return l.inTx(ctx, func(tx *sql.Tx) error {
		return insertAudits(ctx, tx, clientKey, audits)
	})
}

// SaveAudits replaces the client's audit store wholesale.
func (l *SQLiteLedger) SaveAudits(ctx context.Context, clientKey string, audits []model.Audit) error {
	return l.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM audits WHERE client_key = ?`, clientKey); err != nil {
			return eris.Wrap(err, "ledger: clear audits")
		}
		return insertAudits(ctx, tx, clientKey, audits)
	})
}

// EnsureLeadStore is a no-op for SQLite; the table always exists after migration.
func (l *SQLiteLedger) EnsureLeadStore(context.Context, string) error { return nil }

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error { return l.db.Close() }

func (l *SQLiteLedger) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "ledger: begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "ledger: commit tx")
}

func insertAudits(ctx context.Context, tx *sql.Tx, clientKey string, audits []model.Audit) error {
	for _, a := range audits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audits (client_key, url, pain_point, status, email,
				facebook, linkedin, instagram, twitter, contact_page,
				sent_date, audit_attached)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			clientKey, a.URL, a.PainPointSummary, a.Status, a.Email,
			a.Facebook, a.LinkedIn, a.Instagram, a.Twitter,
			a.ContactPage, a.SentDate, a.AuditAttached); err != nil {
			return eris.Wrap(err, "ledger: insert audit")
		}
	}
	return nil
}
