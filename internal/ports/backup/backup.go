package backup

import "context"

// Backuper copia el almacenamiento a un destino durable y devuelve dónde quedó.
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}

// Trigger pide un backup best-effort luego de una escritura confirmada.
// No bloquea ni devuelve error: las fallas se registran del lado del adapter.
type Trigger interface {
	Trigger(reason string)
}

type Nop struct{}

func (Nop) Trigger(string) {}

func (Nop) Backup(context.Context) (string, error) { return "", nil }
