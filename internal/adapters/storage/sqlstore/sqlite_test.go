package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &storeSuite{open: func() *Store {
		// un archivo nuevo por test
		st, err := Open(string(SQLite), filepath.Join(t.TempDir(), "cases.db"))
		require.NoError(t, err)
		require.NoError(t, st.Migrate(context.Background()))
		t.Cleanup(func() { _ = st.Close() })
		return st
	}})
}

func TestOpen_RejectsUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "x")
	require.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	st, err := Open(string(SQLite), filepath.Join(t.TempDir(), "cases.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Migrate(context.Background()))
}
