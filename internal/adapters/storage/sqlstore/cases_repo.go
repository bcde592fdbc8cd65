package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"case-tracker/internal/domain/cases"
)

type CasesRepo struct {
	s *Store
}

// NewCasesRepo además implementa ledger.CaseChecker (Exists).
func NewCasesRepo(s *Store) *CasesRepo {
	return &CasesRepo{s: s}
}

const caseColumns = `
	id, number, subject_name, judge,
	representative_name, representative_kind,
	classification, phase, note, cached_deadline, legacy,
	created_at, updated_at`

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) error {
	_, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`
		INSERT INTO cases (`+caseColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`),
		c.ID,
		c.Number,
		c.SubjectName,
		c.Judge,
		c.RepresentativeName,
		c.RepresentativeKind,
		string(c.Classification),
		c.Phase,
		c.Note,
		c.CachedDeadline,
		c.Legacy,
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
	)
	return err
}

func (r *CasesRepo) Update(ctx context.Context, c cases.Case) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`
		UPDATE cases
		SET
			number = $2,
			subject_name = $3,
			judge = $4,
			representative_name = $5,
			representative_kind = $6,
			classification = $7,
			phase = $8,
			note = $9,
			cached_deadline = $10,
			legacy = $11,
			updated_at = $12
		WHERE id = $1
	`),
		c.ID,
		c.Number,
		c.SubjectName,
		c.Judge,
		c.RepresentativeName,
		c.RepresentativeKind,
		string(c.Classification),
		c.Phase,
		c.Note,
		c.CachedDeadline,
		c.Legacy,
		c.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cases.Case{}, cases.ErrNotFound
	}

	row := r.s.conn(ctx).QueryRowContext(ctx, r.s.q(`
		SELECT `+caseColumns+`
		FROM cases
		WHERE id = $1
	`), id)

	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cases.Case{}, cases.ErrNotFound
		}
		return cases.Case{}, err
	}
	return c, nil
}

func (r *CasesRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.s.conn(ctx).QueryRowContext(ctx, r.s.q(`SELECT 1 FROM cases WHERE id = $1`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// likeEscaper: el texto buscado es literal, % y _ no son comodines.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List: más reciente primero; Query busca en número y nombre (sin distinguir mayúsculas).
func (r *CasesRepo) List(ctx context.Context, filter cases.ListFilter) ([]cases.Case, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	q := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(filter.Query))) + "%"

	rows, err := r.s.conn(ctx).QueryContext(ctx, r.s.q(`
		SELECT `+caseColumns+`
		FROM cases
		WHERE LOWER(number) LIKE $1 ESCAPE '\' OR LOWER(subject_name) LIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`), q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cases.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete: demandados, ítems, ledger y auditoría caen por ON DELETE CASCADE.
func (r *CasesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`DELETE FROM cases WHERE id = $1`), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

func (r *CasesRepo) ReplaceDefendants(ctx context.Context, caseID string, ds []cases.Defendant) error {
	return r.s.RunInTx(ctx, func(ctx context.Context) error {
		db := r.s.conn(ctx)
		if _, err := db.ExecContext(ctx, r.s.q(`DELETE FROM defendants WHERE case_id = $1`), caseID); err != nil {
			return fmt.Errorf("delete defendants: %w", err)
		}
		for i, d := range ds {
			if _, err := db.ExecContext(ctx, r.s.q(`
				INSERT INTO defendants (id, case_id, position, name) VALUES ($1,$2,$3,$4)
			`), d.ID, caseID, i, d.Name); err != nil {
				return fmt.Errorf("insert defendant: %w", err)
			}
		}
		return nil
	})
}

func (r *CasesRepo) ListDefendants(ctx context.Context, caseID string) ([]cases.Defendant, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, r.s.q(`
		SELECT id, case_id, name
		FROM defendants
		WHERE case_id = $1
		ORDER BY position ASC
	`), caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cases.Defendant, 0)
	for rows.Next() {
		var d cases.Defendant
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const itemColumns = `
	id, case_id, position, category, name, quantity, frequency,
	location, prescription_date, unnecessary, blocked`

func (r *CasesRepo) ReplaceItems(ctx context.Context, caseID string, items []cases.TrackedItem) error {
	return r.s.RunInTx(ctx, func(ctx context.Context) error {
		db := r.s.conn(ctx)
		if _, err := db.ExecContext(ctx, r.s.q(`DELETE FROM tracked_items WHERE case_id = $1`), caseID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		for _, it := range items {
			if _, err := db.ExecContext(ctx, r.s.q(`
				INSERT INTO tracked_items (`+itemColumns+`
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			`),
				it.ID,
				caseID,
				it.Position,
				it.Category,
				it.Name,
				it.Quantity,
				it.Frequency,
				it.Location,
				it.PrescriptionDate,
				it.Unnecessary,
				it.Blocked,
			); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
}

func (r *CasesRepo) ListItems(ctx context.Context, caseID string) ([]cases.TrackedItem, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, r.s.q(`
		SELECT `+itemColumns+`
		FROM tracked_items
		WHERE case_id = $1
		ORDER BY position ASC
	`), caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cases.TrackedItem, 0)
	for rows.Next() {
		var it cases.TrackedItem
		if err := rows.Scan(
			&it.ID,
			&it.CaseID,
			&it.Position,
			&it.Category,
			&it.Name,
			&it.Quantity,
			&it.Frequency,
			&it.Location,
			&it.PrescriptionDate,
			&it.Unnecessary,
			&it.Blocked,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *CasesRepo) UpdateItem(ctx context.Context, it cases.TrackedItem) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, r.s.q(`
		UPDATE tracked_items
		SET
			category = $3,
			name = $4,
			quantity = $5,
			frequency = $6,
			location = $7,
			prescription_date = $8,
			unnecessary = $9,
			blocked = $10
		WHERE id = $1 AND case_id = $2
	`),
		it.ID,
		it.CaseID,
		it.Category,
		it.Name,
		it.Quantity,
		it.Frequency,
		it.Location,
		it.PrescriptionDate,
		it.Unnecessary,
		it.Blocked,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (cases.Case, error) {
	var c cases.Case
	var class string
	if err := row.Scan(
		&c.ID,
		&c.Number,
		&c.SubjectName,
		&c.Judge,
		&c.RepresentativeName,
		&c.RepresentativeKind,
		&class,
		&c.Phase,
		&c.Note,
		&c.CachedDeadline,
		&c.Legacy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return cases.Case{}, err
	}
	c.Classification = cases.Classification(class)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
