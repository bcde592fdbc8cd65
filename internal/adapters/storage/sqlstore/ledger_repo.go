package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"case-tracker/internal/domain/ledger"
)

const isoDate = "2006-01-02"

type LedgerRepo struct {
	s *Store
}

func NewLedgerRepo(s *Store) *LedgerRepo {
	return &LedgerRepo{s: s}
}

const entryColumns = `
	id, case_id, seq, entry_date, entry_type, credit, debit,
	description, document_number, movement_code, item_name, quantity,
	ref_month, ref_year, notes, responsible, status, created_at`

// Create asigna seq = último del caso + 1 dentro de la misma transacción.
func (r *LedgerRepo) Create(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	err := r.s.RunInTx(ctx, func(ctx context.Context) error {
		db := r.s.conn(ctx)

		ok, err := NewCasesRepo(r.s).Exists(ctx, e.CaseID)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrCaseNotFound
		}

		if err := db.QueryRowContext(ctx, r.s.q(`
			SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries WHERE case_id = $1
		`), e.CaseID).Scan(&e.Seq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}

		_, err = db.ExecContext(ctx, r.s.q(`
			INSERT INTO ledger_entries (`+entryColumns+`
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		`),
			e.ID,
			e.CaseID,
			e.Seq,
			e.Date.Format(isoDate),
			string(e.Type),
			e.Credit,
			e.Debit,
			e.Description,
			e.DocumentNumber,
			e.MovementCode,
			e.ItemName,
			e.Quantity,
			e.RefMonth,
			e.RefYear,
			e.Notes,
			e.Responsible,
			string(e.Status),
			e.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (r *LedgerRepo) GetByID(ctx context.Context, id string) (ledger.Entry, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, r.s.q(`
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE id = $1
	`), id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Entry{}, ledger.ErrNotFound
		}
		return ledger.Entry{}, err
	}
	return e, nil
}

// Update no toca case_id, seq ni created_at.
func (r *LedgerRepo) Update(ctx context.Context, e ledger.Entry) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`
		UPDATE ledger_entries
		SET
			entry_date = $2,
			entry_type = $3,
			credit = $4,
			debit = $5,
			description = $6,
			document_number = $7,
			movement_code = $8,
			item_name = $9,
			quantity = $10,
			ref_month = $11,
			ref_year = $12,
			notes = $13,
			responsible = $14,
			status = $15
		WHERE id = $1
	`),
		e.ID,
		e.Date.Format(isoDate),
		string(e.Type),
		e.Credit,
		e.Debit,
		e.Description,
		e.DocumentNumber,
		e.MovementCode,
		e.ItemName,
		e.Quantity,
		e.RefMonth,
		e.RefYear,
		e.Notes,
		e.Responsible,
		string(e.Status),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`DELETE FROM ledger_entries WHERE id = $1`), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) ListByCase(ctx context.Context, caseID string) ([]ledger.Entry, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, r.s.q(`
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE case_id = $1
		ORDER BY seq ASC
	`), caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *LedgerRepo) PostDrafts(ctx context.Context, caseID string) (int, error) {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`
		UPDATE ledger_entries
		SET status = $2
		WHERE case_id = $1 AND status = $3
	`), caseID, string(ledger.StatusPosted), string(ledger.StatusDraft))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scanEntry(row scanner) (ledger.Entry, error) {
	var e ledger.Entry
	var date, typ, status string
	if err := row.Scan(
		&e.ID,
		&e.CaseID,
		&e.Seq,
		&date,
		&typ,
		&e.Credit,
		&e.Debit,
		&e.Description,
		&e.DocumentNumber,
		&e.MovementCode,
		&e.ItemName,
		&e.Quantity,
		&e.RefMonth,
		&e.RefYear,
		&e.Notes,
		&e.Responsible,
		&status,
		&e.CreatedAt,
	); err != nil {
		return ledger.Entry{}, err
	}

	d, err := time.Parse(isoDate, date)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("entry %s: bad date %q: %w", e.ID, date, err)
	}
	e.Date = d
	e.Type = ledger.EntryType(typ)
	e.Status = ledger.Status(status)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
