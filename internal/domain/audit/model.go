package audit

import "time"

// Entry es un registro de verificación. Inmutable una vez escrito.
type Entry struct {
	ID     string
	CaseID string
	Seq    int64

	RecordedAt time.Time
	Phase      string
	Actor      string

	DiligenceDone     bool
	DiligenceDoneDesc string

	DiligencePending bool
	PendingDesc      string

	Deadline string
	NotifyBy string

	Summary string
	// ItemsSnapshot es opaco para el dominio (lo produce un SnapshotSerializer).
	ItemsSnapshot string
}
