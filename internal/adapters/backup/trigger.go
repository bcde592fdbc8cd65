package backup

import (
	"context"
	"sync"
	"time"

	"case-tracker/internal/platform/logger"
	"case-tracker/internal/platform/metrics"
	bport "case-tracker/internal/ports/backup"

	"golang.org/x/sync/singleflight"
)

const backupTimeout = 2 * time.Minute

// Async implementa backup.Trigger: corre el backup en segundo plano y
// colapsa pedidos simultáneos en uno solo. Un pedido que llega con un backup
// en curso deja pending y provoca una pasada más al terminar, porque esa
// copia ya no incluye su escritura. Los errores se loguean y cuentan, nunca suben.
type Async struct {
	b       bport.Backuper
	log     logger.Logger
	metrics *metrics.Metrics

	group singleflight.Group
	wg    sync.WaitGroup

	mu      sync.Mutex
	pending bool
	reason  string
}

func NewAsync(b bport.Backuper, log logger.Logger, m *metrics.Metrics) *Async {
	if log == nil {
		log = logger.Nop()
	}
	return &Async{b: b, log: log, metrics: m}
}

func (a *Async) Trigger(reason string) {
	a.mu.Lock()
	a.pending = true
	a.reason = reason
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// si nos unimos a una pasada que ya había consumido pending, otra vuelta
		for a.isPending() {
			_, _, _ = a.group.Do("backup", func() (any, error) {
				a.drain()
				return nil, nil
			})
		}
	}()
}

// drain corre backups hasta que no quede ningún pedido sin cubrir.
func (a *Async) drain() {
	for {
		reason, ok := a.take()
		if !ok {
			return
		}
		a.run(reason)
	}
}

func (a *Async) take() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.pending {
		return "", false
	}
	a.pending = false
	return a.reason, true
}

func (a *Async) isPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

func (a *Async) run(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	path, err := a.b.Backup(ctx)
	if err != nil {
		a.metrics.IncBackupFailure()
		a.log.Warn("backup failed", map[string]any{"reason": reason, "error": err})
		return
	}
	a.metrics.IncBackup()
	a.log.Debug("backup done", map[string]any{"reason": reason, "path": path})
}

// Wait espera los backups en curso (shutdown y tests).
func (a *Async) Wait() {
	a.wg.Wait()
}
