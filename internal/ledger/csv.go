package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/model"
)

// CSVLedger stores each client's leads and audits as UTF-8 comma-delimited
// files with a mandatory header row. Full rewrites go through a temp file
// plus rename so a crash mid-write never corrupts earlier rows; the unsaved
// tail of a batch is the most that can be lost.
type CSVLedger struct {
	dir string
}

// maxMalformedRows bounds consecutive decode failures so a wedged reader
// cannot spin forever.
const maxMalformedRows = 100

// NewCSVLedger creates a CSV-backed ledger rooted at dir ("." when empty).
func NewCSVLedger(dir string) *CSVLedger {
	if dir == "" {
		dir = "."
	}
	return &CSVLedger{dir: dir}
}

func (l *CSVLedger) leadPath(clientKey string) string {
	return filepath.Join(l.dir, fmt.Sprintf("leads_queue_%s.csv", clientKey))
}

func (l *CSVLedger) auditPath(clientKey string) string {
	return filepath.Join(l.dir, fmt.Sprintf("audits_to_send_%s.csv", clientKey))
}

// LoadLeads reads the client's lead queue. A missing file is an empty store;
// malformed rows are skipped with a warning.
func (l *CSVLedger) LoadLeads(_ context.Context, clientKey string) ([]model.Lead, error) {
	var leads []model.Lead
	err := decodeFile(l.leadPath(clientKey), func(dec *csvutil.Decoder) error {
		var lead model.Lead
		if err := dec.Decode(&lead); err != nil {
			return err
		}
		leads = append(leads, lead)
		return nil
	})
	return leads, err
}

// LoadAudits reads the client's audit store with the same tolerance as LoadLeads.
func (l *CSVLedger) LoadAudits(_ context.Context, clientKey string) ([]model.Audit, error) {
	var audits []model.Audit
	err := decodeFile(l.auditPath(clientKey), func(dec *csvutil.Decoder) error {
		var audit model.Audit
		if err := dec.Decode(&audit); err != nil {
			return err
		}
		audits = append(audits, audit)
		return nil
	})
	return audits, err
}

// AppendLeads appends rows to the lead queue, writing the header only when
// the file does not exist yet.
func (l *CSVLedger) AppendLeads(ctx context.Context, clientKey string, leads []model.Lead) error {
	return appendRows(l.leadPath(clientKey), leads, func() error {
		return l.SaveLeads(ctx, clientKey, leads)
	})
}

// AppendAudits appends rows to the audit store, writing the header only when
// the file does not exist yet.
func (l *CSVLedger) AppendAudits(ctx context.Context, clientKey string, audits []model.Audit) error {
	return appendRows(l.auditPath(clientKey), audits, func() error {
		return l.SaveAudits(ctx, clientKey, audits)
	})
}

// SaveLeads rewrites the whole lead queue atomically.
func (l *CSVLedger) SaveLeads(_ context.Context, clientKey string, leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	data, err := csvutil.Marshal(leads)
	if err != nil {
		return eris.Wrap(err, "ledger: marshal leads")
	}
	return writeAtomic(l.leadPath(clientKey), data)
}

// SaveAudits rewrites the whole audit store atomically.
func (l *CSVLedger) SaveAudits(_ context.Context, clientKey string, audits []model.Audit) error {
	if audits == nil {
		audits = []model.Audit{}
	}
	data, err := csvutil.Marshal(audits)
	if err != nil {
		return eris.Wrap(err, "ledger: marshal audits")
	}
	return writeAtomic(l.auditPath(clientKey), data)
}

// EnsureLeadStore creates an empty lead queue (header only) when none exists.
func (l *CSVLedger) EnsureLeadStore(ctx context.Context, clientKey string) error {
	if _, err := os.Stat(l.leadPath(clientKey)); err == nil {
		return nil
	}
	return l.SaveLeads(ctx, clientKey, nil)
}

// Close is a no-op for the CSV backend.
func (l *CSVLedger) Close() error { return nil }

// decodeFile opens a CSV store and decodes it row by row. Rows that fail to
// decode are skipped so one bad line never poisons the batch.
func decodeFile(path string, decodeOne func(*csvutil.Decoder) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "ledger: open %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	dec, err := csvutil.NewDecoder(reader)
	if errors.Is(err, io.EOF) {
		// Zero-byte file: treat as empty store.
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "ledger: read header %s", path)
	}

	badRows := 0
	for {
		err := decodeOne(dec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			zap.L().Warn("ledger: skipping malformed row",
				zap.String("file", path),
				zap.Error(err),
			)
			badRows++
			if badRows >= maxMalformedRows {
				return eris.Errorf("ledger: too many malformed rows in %s", path)
			}
			continue
		}
		badRows = 0
	}
}

// appendRows appends records to an existing store without re-emitting the
// header, falling back to a full save (header included) when the file is new.
func appendRows[T any](path string, rows []T, saveAll func() error) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return saveAll()
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "ledger: open for append %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "ledger: append row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "ledger: flush %s", path)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place. Rename-in-same-dir is the crash-safety discipline here: the
// previous complete write always survives a crash mid-save.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "ledger: create temp for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "ledger: write temp for %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "ledger: close temp for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "ledger: rename %s", path)
	}
	return nil
}
