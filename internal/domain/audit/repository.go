package audit

import "context"

// Repository es append-only: no hay Update ni Delete.
// Las entradas solo desaparecen con el borrado en cascada del caso.
type Repository interface {
	// Append asigna Seq (siguiente del caso) y persiste.
	Append(ctx context.Context, e Entry) (Entry, error)
	// ListByCase devuelve la más reciente primero.
	ListByCase(ctx context.Context, caseID string) ([]Entry, error)
	Latest(ctx context.Context, caseID string) (Entry, error)
}
