package memory

import (
	"context"
	"sync"

	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/ledger"
)

// Store guarda todo en mapas detrás de un solo mutex.
// Uso: dev/tests. No persiste nada entre reinicios.
type Store struct {
	mu sync.RWMutex

	cases      map[string]cases.Case
	defendants map[string][]cases.Defendant
	items      map[string][]cases.TrackedItem

	entries   map[string]ledger.Entry
	ledgerSeq map[string]int64

	// audit por caso, en orden de inserción
	audit map[string][]audit.Entry
}

func NewStore() *Store {
	return &Store{
		cases:      make(map[string]cases.Case),
		defendants: make(map[string][]cases.Defendant),
		items:      make(map[string][]cases.TrackedItem),
		entries:    make(map[string]ledger.Entry),
		ledgerSeq:  make(map[string]int64),
		audit:      make(map[string][]audit.Entry),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock/rlock no vuelven a tomar el mutex si ctx ya está dentro de RunInTx.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// RunInTx toma el lock de escritura durante fn y restaura la foto previa si fn falla.
// Llamadas anidadas se unen a la transacción en curso.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.clone()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

type snapshot struct {
	cases      map[string]cases.Case
	defendants map[string][]cases.Defendant
	items      map[string][]cases.TrackedItem
	entries    map[string]ledger.Entry
	ledgerSeq  map[string]int64
	audit      map[string][]audit.Entry
}

func (s *Store) clone() snapshot {
	return snapshot{
		cases:      copyMap(s.cases),
		defendants: copySlices(s.defendants),
		items:      copySlices(s.items),
		entries:    copyMap(s.entries),
		ledgerSeq:  copyMap(s.ledgerSeq),
		audit:      copySlices(s.audit),
	}
}

func (s *Store) restore(snap snapshot) {
	s.cases = snap.cases
	s.defendants = snap.defendants
	s.items = snap.items
	s.entries = snap.entries
	s.ledgerSeq = snap.ledgerSeq
	s.audit = snap.audit
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}
