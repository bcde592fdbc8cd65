package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// Fechas de negocio (ledger) como TEXT yyyy-mm-dd en ambos dialectos: ordenan bien y no dependen del driver.
// Plazos se guardan tal cual (dd/mm/yyyy o vacío).
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	number TEXT NOT NULL,
	subject_name TEXT NOT NULL,
	judge TEXT NOT NULL DEFAULT '',
	representative_name TEXT NOT NULL DEFAULT '',
	representative_kind TEXT NOT NULL DEFAULT '',
	classification TEXT NOT NULL,
	phase TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	cached_deadline TEXT NOT NULL DEFAULT '',
	legacy BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_number ON cases(number);
CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases(created_at DESC);

CREATE TABLE IF NOT EXISTS defendants (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_defendants_case ON defendants(case_id, position);

CREATE TABLE IF NOT EXISTS tracked_items (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	quantity TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	prescription_date TEXT NOT NULL DEFAULT '',
	unnecessary BOOLEAN NOT NULL DEFAULT FALSE,
	blocked BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_tracked_items_case ON tracked_items(case_id, position);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	seq BIGINT NOT NULL,
	entry_date TEXT NOT NULL,
	entry_type TEXT NOT NULL,
	credit {{num}} NOT NULL,
	debit {{num}} NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	document_number TEXT NOT NULL DEFAULT '',
	movement_code TEXT NOT NULL DEFAULT '',
	item_name TEXT NOT NULL DEFAULT '',
	quantity TEXT NOT NULL DEFAULT '',
	ref_month TEXT NOT NULL DEFAULT '',
	ref_year TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	responsible TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_case ON ledger_entries(case_id, seq);

CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	seq BIGINT NOT NULL,
	recorded_at {{ts}} NOT NULL,
	phase TEXT NOT NULL DEFAULT '',
	actor TEXT NOT NULL,
	diligence_done BOOLEAN NOT NULL DEFAULT FALSE,
	diligence_done_desc TEXT NOT NULL DEFAULT '',
	diligence_pending BOOLEAN NOT NULL DEFAULT FALSE,
	pending_desc TEXT NOT NULL DEFAULT '',
	deadline TEXT NOT NULL DEFAULT '',
	notify_by TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	items_snapshot TEXT NOT NULL DEFAULT '[]',
	UNIQUE (case_id, seq)
);
`

func (s *Store) schema() string {
	ts, num := "TIMESTAMPTZ", "NUMERIC(14,2)"
	if s.dialect == SQLite {
		// go-sqlite3 devuelve time.Time para columnas TIMESTAMP; montos como texto exacto
		ts, num = "TIMESTAMP", "TEXT"
	}
	return strings.NewReplacer("{{ts}}", ts, "{{num}}", num).Replace(schemaTemplate)
}

// Migrate crea el esquema si no existe. Idempotente.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(s.schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
