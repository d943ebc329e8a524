package entries

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/migrations"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

var created = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func entry(id, user, date string) *models.CachedEntry {
	return &models.CachedEntry{
		Entry: api.Entry{
			ID:        id,
			UserID:    user,
			Date:      datex.MustParse(date),
			RoseText:  "rose " + id,
			BudText:   "bud " + id,
			ThornText: "thorn " + id,
			IsPublic:  true,
			Tags:      []string{"work", "family"},
			Reactions: []api.Reaction{{GroupID: "g1", UserReactingID: "u2", ReactionKind: api.ReactionLove, CreatedAt: created}},
			CreatedAt: created,
			UpdatedAt: created,
		},
		CachedAt: created.Add(time.Minute),
	}
}

func TestUpsert_InsertThenRead(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := entry("e1", "u1", "2024-05-01")
	require.NoError(t, r.Upsert(ctx, e))

	got, err := r.GetByUserDate(ctx, "u1", datex.MustParse("2024-05-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(*e, got[0]); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsert_OverwritesAndClearsPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := entry("e1", "u1", "2024-05-01")
	e.Pending = true
	require.NoError(t, r.Upsert(ctx, e))

	e.RoseText = "updated"
	e.IsPublic = false
	e.Tags = nil
	e.Pending = false
	require.NoError(t, r.Upsert(ctx, e))

	got, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated", got[0].RoseText)
	assert.False(t, got[0].IsPublic)
	assert.False(t, got[0].Pending)
	assert.Empty(t, got[0].Tags)
}

func TestGetByUserDate_FiltersUserAndDay(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, entry("a", "u1", "2024-05-01")))
	require.NoError(t, r.Upsert(ctx, entry("b", "u1", "2024-04-30")))
	require.NoError(t, r.Upsert(ctx, entry("c", "u2", "2024-05-01")))

	got, err := r.GetByUserDate(ctx, "u1", datex.MustParse("2024-05-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	none, err := r.GetByUserDate(ctx, "u3", datex.MustParse("2024-05-01"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListByUser_NewestDayFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, entry("old", "u1", "2024-04-01")))
	require.NoError(t, r.Upsert(ctx, entry("new", "u1", "2024-05-01")))

	got, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, entry("e1", "u1", "2024-05-01")))
	require.NoError(t, r.Delete(ctx, "e1"))
	require.NoError(t, r.Delete(ctx, "e1"))

	got, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
