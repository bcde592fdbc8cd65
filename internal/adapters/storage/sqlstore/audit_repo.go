package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"case-tracker/internal/domain/audit"
)

// AuditRepo es append-only: no hay UPDATE ni DELETE (solo la cascada del caso).
type AuditRepo struct {
	s *Store
}

func NewAuditRepo(s *Store) *AuditRepo {
	return &AuditRepo{s: s}
}

const auditColumns = `
	id, case_id, seq, recorded_at, phase, actor,
	diligence_done, diligence_done_desc, diligence_pending, pending_desc,
	deadline, notify_by, summary, items_snapshot`

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	err := r.s.RunInTx(ctx, func(ctx context.Context) error {
		db := r.s.conn(ctx)

		if err := db.QueryRowContext(ctx, r.s.q(`
			SELECT COALESCE(MAX(seq), 0) + 1 FROM audit_entries WHERE case_id = $1
		`), e.CaseID).Scan(&e.Seq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}

		_, err := db.ExecContext(ctx, r.s.q(`
			INSERT INTO audit_entries (`+auditColumns+`
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`),
			e.ID,
			e.CaseID,
			e.Seq,
			e.RecordedAt.UTC(),
			e.Phase,
			e.Actor,
			e.DiligenceDone,
			e.DiligenceDoneDesc,
			e.DiligencePending,
			e.PendingDesc,
			e.Deadline,
			e.NotifyBy,
			e.Summary,
			e.ItemsSnapshot,
		)
		return err
	})
	if err != nil {
		return audit.Entry{}, err
	}
	return e, nil
}

func (r *AuditRepo) ListByCase(ctx context.Context, caseID string) ([]audit.Entry, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, r.s.q(`
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE case_id = $1
		ORDER BY seq DESC
	`), caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *AuditRepo) Latest(ctx context.Context, caseID string) (audit.Entry, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, r.s.q(`
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE case_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`), caseID)

	e, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return audit.Entry{}, audit.ErrNotFound
		}
		return audit.Entry{}, err
	}
	return e, nil
}

func scanAudit(row scanner) (audit.Entry, error) {
	var e audit.Entry
	if err := row.Scan(
		&e.ID,
		&e.CaseID,
		&e.Seq,
		&e.RecordedAt,
		&e.Phase,
		&e.Actor,
		&e.DiligenceDone,
		&e.DiligenceDoneDesc,
		&e.DiligencePending,
		&e.PendingDesc,
		&e.Deadline,
		&e.NotifyBy,
		&e.Summary,
		&e.ItemsSnapshot,
	); err != nil {
		return audit.Entry{}, err
	}
	e.RecordedAt = e.RecordedAt.UTC()
	return e, nil
}
