package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"folio/domain"
)

// newTestDB opens a migrated SQLite database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	db, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db, DriverSQLite))
	return db
}

func newAuthor(t *testing.T, db *sql.DB) domain.User {
	t.Helper()
	u, err := NewUsers(db).Create(context.Background(), "author@example.com", "hash", domain.RoleAdmin)
	require.NoError(t, err)
	return u
}
