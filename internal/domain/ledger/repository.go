package ledger

import "context"

type Repository interface {
	// Create asigna Seq (siguiente del caso) y persiste.
	Create(ctx context.Context, e Entry) (Entry, error)
	GetByID(ctx context.Context, id string) (Entry, error)
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id string) error

	// ListByCase devuelve todas las entradas del caso en orden de inserción (Seq asc).
	ListByCase(ctx context.Context, caseID string) ([]Entry, error)

	// PostDrafts pasa draft -> posted para el caso y devuelve cuántas cambió.
	PostDrafts(ctx context.Context, caseID string) (int, error)
}
