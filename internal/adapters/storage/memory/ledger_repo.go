package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"case-tracker/internal/domain/ledger"
)

type ledgerRepo struct {
	s *Store
}

func NewLedgerRepo(s *Store) ledger.Repository {
	return &ledgerRepo{s: s}
}

func (r *ledgerRepo) Create(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	defer r.s.lock(ctx)()

	if strings.TrimSpace(e.ID) == "" {
		return ledger.Entry{}, errors.New("entry id required")
	}
	if _, exists := r.s.entries[e.ID]; exists {
		return ledger.Entry{}, errors.New("entry already exists")
	}
	if _, ok := r.s.cases[e.CaseID]; !ok {
		return ledger.Entry{}, ledger.ErrCaseNotFound
	}

	// Seq no se reutiliza aunque se borren entradas
	r.s.ledgerSeq[e.CaseID]++
	e.Seq = r.s.ledgerSeq[e.CaseID]
	r.s.entries[e.ID] = e
	return e, nil
}

func (r *ledgerRepo) GetByID(ctx context.Context, id string) (ledger.Entry, error) {
	defer r.s.rlock(ctx)()

	e, ok := r.s.entries[id]
	if !ok {
		return ledger.Entry{}, ledger.ErrNotFound
	}
	return e, nil
}

func (r *ledgerRepo) Update(ctx context.Context, e ledger.Entry) error {
	defer r.s.lock(ctx)()

	cur, ok := r.s.entries[e.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	// caso y orden de inserción no cambian
	e.CaseID = cur.CaseID
	e.Seq = cur.Seq
	r.s.entries[e.ID] = e
	return nil
}

func (r *ledgerRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.entries[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.s.entries, id)
	return nil
}

func (r *ledgerRepo) ListByCase(ctx context.Context, caseID string) ([]ledger.Entry, error) {
	defer r.s.rlock(ctx)()

	out := make([]ledger.Entry, 0)
	for _, e := range r.s.entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *ledgerRepo) PostDrafts(ctx context.Context, caseID string) (int, error) {
	defer r.s.lock(ctx)()

	n := 0
	for id, e := range r.s.entries {
		if e.CaseID == caseID && e.Status == ledger.StatusDraft {
			e.Status = ledger.StatusPosted
			r.s.entries[id] = e
			n++
		}
	}
	return n, nil
}
