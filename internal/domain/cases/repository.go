package cases

import "context"

type Repository interface {
	Create(ctx context.Context, c Case) error
	GetByID(ctx context.Context, id string) (Case, error)
	List(ctx context.Context, filter ListFilter) ([]Case, error)
	Update(ctx context.Context, c Case) error
	// Delete borra el caso y todo lo que cuelga de él (demandados, ítems, ledger, auditoría).
	Delete(ctx context.Context, id string) error

	// Replace* reemplazan el conjunto completo; atómico solo si ctx trae transacción.
	ReplaceDefendants(ctx context.Context, caseID string, ds []Defendant) error
	ListDefendants(ctx context.Context, caseID string) ([]Defendant, error)

	ReplaceItems(ctx context.Context, caseID string, items []TrackedItem) error
	ListItems(ctx context.Context, caseID string) ([]TrackedItem, error)
	UpdateItem(ctx context.Context, it TrackedItem) error
}

type ListFilter struct {
	Query string // número o nombre
	Limit int
}
