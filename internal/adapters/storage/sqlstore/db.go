package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Store es el adapter SQL compartido por los repos. Implementa tx.Runner.
type Store struct {
	db      *sql.DB
	dialect Dialect
	// path del archivo sqlite (backups); vacío en postgres
	path string
}

// Open abre una conexión pool usando pgx (postgres) o go-sqlite3 (sqlite).
func Open(dialect, dsn string) (*Store, error) {
	var (
		s   = &Store{dialect: Dialect(dialect)}
		err error
	)

	switch s.dialect {
	case Postgres:
		s.db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		// defaults razonables para MVP (ajustable luego)
		s.db.SetMaxOpenConns(10)
		s.db.SetMaxIdleConns(5)
		s.db.SetConnMaxIdleTime(5 * time.Minute)
		s.db.SetConnMaxLifetime(30 * time.Minute)
	case SQLite:
		s.path = strings.TrimSpace(dsn)
		if s.path == "" {
			return nil, fmt.Errorf("sqlite: empty path")
		}
		s.db, err = sql.Open("sqlite3", s.path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, err
		}
		// un solo escritor; evita "database is locked" dentro de una tx
		s.db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) DB() *sql.DB { return s.db }
func (s *Store) Dialect() Dialect { return s.dialect }
func (s *Store) Path() string { return s.path }
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// q adapta los placeholders $N al dialecto (?N en sqlite).
func (s *Store) q(query string) string {
	if s.dialect == SQLite {
		return placeholder.ReplaceAllString(query, "?$1")
	}
	return query
}
