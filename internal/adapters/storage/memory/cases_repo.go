package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"case-tracker/internal/domain/cases"
)

// CaseRepo además implementa ledger.CaseChecker (Exists).
type CaseRepo struct {
	s *Store
}

func NewCaseRepo(s *Store) *CaseRepo {
	return &CaseRepo{s: s}
}

func (r *CaseRepo) Create(ctx context.Context, c cases.Case) error {
	defer r.s.lock(ctx)()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("case id required")
	}
	if _, exists := r.s.cases[c.ID]; exists {
		return errors.New("case already exists")
	}
	r.s.cases[c.ID] = c
	return nil
}

func (r *CaseRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	defer r.s.rlock(ctx)()

	c, ok := r.s.cases[id]
	if !ok {
		return cases.Case{}, cases.ErrNotFound
	}
	return c, nil
}

func (r *CaseRepo) Exists(ctx context.Context, id string) (bool, error) {
	defer r.s.rlock(ctx)()

	_, ok := r.s.cases[id]
	return ok, nil
}

func (r *CaseRepo) List(ctx context.Context, filter cases.ListFilter) ([]cases.Case, error) {
	defer r.s.rlock(ctx)()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]cases.Case, 0)
	for _, c := range r.s.cases {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Number), q) &&
			!strings.Contains(strings.ToLower(c.SubjectName), q) {
			continue
		}
		out = append(out, c)
	}

	// Más reciente primero, igual que el store SQL
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *CaseRepo) Update(ctx context.Context, c cases.Case) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.cases[c.ID]; !exists {
		return cases.ErrNotFound
	}
	r.s.cases[c.ID] = c
	return nil
}

// Delete en cascada: demandados, ítems, ledger y auditoría.
func (r *CaseRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.cases[id]; !exists {
		return cases.ErrNotFound
	}
	delete(r.s.cases, id)
	delete(r.s.defendants, id)
	delete(r.s.items, id)
	delete(r.s.audit, id)
	delete(r.s.ledgerSeq, id)
	for eid, e := range r.s.entries {
		if e.CaseID == id {
			delete(r.s.entries, eid)
		}
	}
	return nil
}

func (r *CaseRepo) ReplaceDefendants(ctx context.Context, caseID string, ds []cases.Defendant) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.cases[caseID]; !exists {
		return cases.ErrNotFound
	}
	r.s.defendants[caseID] = append([]cases.Defendant(nil), ds...)
	return nil
}

func (r *CaseRepo) ListDefendants(ctx context.Context, caseID string) ([]cases.Defendant, error) {
	defer r.s.rlock(ctx)()

	return append([]cases.Defendant{}, r.s.defendants[caseID]...), nil
}

func (r *CaseRepo) ReplaceItems(ctx context.Context, caseID string, items []cases.TrackedItem) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.cases[caseID]; !exists {
		return cases.ErrNotFound
	}
	r.s.items[caseID] = append([]cases.TrackedItem(nil), items...)
	return nil
}

func (r *CaseRepo) ListItems(ctx context.Context, caseID string) ([]cases.TrackedItem, error) {
	defer r.s.rlock(ctx)()

	out := append([]cases.TrackedItem{}, r.s.items[caseID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *CaseRepo) UpdateItem(ctx context.Context, it cases.TrackedItem) error {
	defer r.s.lock(ctx)()

	list := r.s.items[it.CaseID]
	for i := range list {
		if list[i].ID == it.ID {
			list[i] = it
			return nil
		}
	}
	return cases.ErrNotFound
}
