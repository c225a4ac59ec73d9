package marks

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"lifeweeks/internal/common"
	"lifeweeks/internal/snapshot"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE marks (
  id         TEXT PRIMARY KEY,
  title      TEXT NOT NULL,
  kind       TEXT NOT NULL,
  date       TEXT NOT NULL,
  week_index INTEGER NOT NULL,
  tag        TEXT NOT NULL DEFAULT '',
  notes      TEXT NOT NULL DEFAULT ''
);`)
	require.NoError(t, err)
	return db
}

func mark(id, title string) *snapshot.Mark {
	return &snapshot.Mark{ID: id, Title: title, Kind: snapshot.KindNote, Date: "2001-02-03", WeekIndex: 42}
}

func TestCreateOrUpdate_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, mark("m1", "First job")))

	got, err := r.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "First job", got.Title)
	assert.Equal(t, 42, got.WeekIndex)
}

func TestCreateOrUpdate_UpsertKeepsInsertionOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, mark("a", "one")))
	require.NoError(t, r.CreateOrUpdate(ctx, mark("b", "two")))
	require.NoError(t, r.CreateOrUpdate(ctx, mark("a", "one edited")))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "one edited", all[0].Title)
	assert.Equal(t, "b", all[1].ID)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetByID(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDeleteByID_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, mark("x", "gone soon")))
	require.NoError(t, r.CreateOrUpdate(ctx, mark("y", "stays")))

	require.NoError(t, r.DeleteByID(ctx, "x"))
	require.NoError(t, r.DeleteByID(ctx, "x")) // second delete is a no-op
	require.NoError(t, r.DeleteByID(ctx, "never-existed"))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "y", all[0].ID)
}

func TestReplaceAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, mark("old", "old")))

	require.NoError(t, r.ReplaceAll(ctx, []snapshot.Mark{*mark("n1", "new one"), *mark("n2", "new two")}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "n1", all[0].ID)
	assert.Equal(t, "n2", all[1].ID)
}

func TestGetAll_ErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.GetAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to select marks")
}
