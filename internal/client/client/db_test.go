package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestInitDatabase_CreatesDirAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "local.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"goose_db_version", "entries", "groups", "tags", "metadata"} {
		require.True(t, tableExists(t, db, table), table)
	}
}

func TestInitDatabase_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewRepositories(db).Metadata.Set(ctx, "user_id", []byte("u1")))
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	repos := NewRepositories(db)
	v, err := repos.Metadata.GetString(ctx, "user_id")
	require.NoError(t, err)
	require.Equal(t, "u1", v)

	list, err := repos.Entries.GetByUserDate(ctx, "u1", datex.MustParse("2024-05-01"))
	require.NoError(t, err)
	require.Empty(t, list)
}
