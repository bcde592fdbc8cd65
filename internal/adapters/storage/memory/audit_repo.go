package memory

import (
	"context"
	"errors"
	"strings"

	"case-tracker/internal/domain/audit"
)

type auditRepo struct {
	s *Store
}

func NewAuditRepo(s *Store) audit.Repository {
	return &auditRepo{s: s}
}

// Append-only: no hay Update ni Delete.
func (r *auditRepo) Append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	defer r.s.lock(ctx)()

	if strings.TrimSpace(e.ID) == "" {
		return audit.Entry{}, errors.New("audit entry id required")
	}
	if _, ok := r.s.cases[e.CaseID]; !ok {
		return audit.Entry{}, errors.New("audit entry references unknown case")
	}

	list := r.s.audit[e.CaseID]
	e.Seq = int64(len(list) + 1)
	r.s.audit[e.CaseID] = append(list, e)
	return e, nil
}

func (r *auditRepo) ListByCase(ctx context.Context, caseID string) ([]audit.Entry, error) {
	defer r.s.rlock(ctx)()

	list := r.s.audit[caseID]
	out := make([]audit.Entry, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (r *auditRepo) Latest(ctx context.Context, caseID string) (audit.Entry, error) {
	defer r.s.rlock(ctx)()

	list := r.s.audit[caseID]
	if len(list) == 0 {
		return audit.Entry{}, audit.ErrNotFound
	}
	return list[len(list)-1], nil
}
