package tx

import (
	"context"
	"database/sql"
)

// Runner ejecuta fn como una unidad: si fn devuelve error, no queda nada persistido.
// Los repos llamados con el ctx recibido por fn participan de la misma transacción.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx guarda la transacción SQL en el contexto para los stores.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extrae la transacción SQL del contexto, si hay.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
