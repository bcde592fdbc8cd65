package app

import (
	"context"
	"fmt"

	backupadapter "case-tracker/internal/adapters/backup"
	"case-tracker/internal/adapters/storage/sqlstore"
	"case-tracker/internal/platform/config"
	"case-tracker/internal/ports/backup"
)

// Storage agrupa lo que abren tanto la API como el CLI.
type Storage struct {
	SQL      *sqlstore.Store // nil con driver memory
	Backuper backup.Backuper

	gcs *backupadapter.GCS
}

// OpenStorage abre el store según config, migra y arma el backuper.
// Solo sqlite tiene backup por archivo; el resto usa backup.Nop.
func OpenStorage(ctx context.Context, cfg config.Config) (*Storage, error) {
	s := &Storage{Backuper: backup.Nop{}}
	if cfg.Database.Driver == config.DriverMemory {
		return s, nil
	}

	st, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	s.SQL = st

	if st.Dialect() != sqlstore.SQLite {
		return s, nil
	}

	var up backupadapter.Uploader
	if cfg.Backup.GCSBucket != "" {
		g, err := backupadapter.NewGCS(ctx, cfg.Backup.GCSBucket, cfg.App)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		s.gcs = g
		up = g
	}
	s.Backuper = backupadapter.NewSQLite(st.DB(), cfg.Backup.Dir, cfg.Backup.Keep, up)
	return s, nil
}

func (s *Storage) Close() error {
	if s.gcs != nil {
		_ = s.gcs.Close()
	}
	if s.SQL != nil {
		return s.SQL.Close()
	}
	return nil
}
