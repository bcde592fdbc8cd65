package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "cases_"
	fileSuffix = ".db"
	stampFmt   = "20060102_150405.000"

	DefaultKeep = 10
)

// Uploader copia un backup ya escrito a un destino remoto (opcional).
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// SQLite copia la base con VACUUM INTO (consistente aunque haya lectores)
// y deja solo los Keep archivos más nuevos en Dir.
type SQLite struct {
	DB       *sql.DB
	Dir      string
	Keep     int
	Uploader Uploader

	now func() time.Time
}

func NewSQLite(db *sql.DB, dir string, keep int, up Uploader) *SQLite {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &SQLite{DB: db, Dir: dir, Keep: keep, Uploader: up, now: time.Now}
}

func (b *SQLite) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}

	path := filepath.Join(b.Dir, filePrefix+b.now().UTC().Format(stampFmt)+fileSuffix)
	if _, err := b.DB.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}

	if err := Rotate(b.Dir, b.Keep); err != nil {
		return path, err
	}

	if b.Uploader != nil {
		if err := b.Uploader.Upload(ctx, path); err != nil {
			return path, fmt.Errorf("upload: %w", err)
		}
	}
	return path, nil
}

// Rotate borra los backups más viejos dejando keep archivos.
// El nombre lleva el timestamp, así que orden lexicográfico = cronológico.
func Rotate(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read backup dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, filePrefix) || !strings.HasSuffix(n, fileSuffix) {
			continue
		}
		names = append(names, n)
	}
	if len(names) <= keep {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, n := range names[keep:] {
		if err := os.Remove(filepath.Join(dir, n)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old backup: %w", err)
		}
	}
	return nil
}
