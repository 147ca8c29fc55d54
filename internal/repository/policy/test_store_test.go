package policy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/repository/sqlstore"
	"policyinsight/internal/types"
)

func stepClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Insert(ctx, types.Policy{Title: "  "})
	require.True(t, types.IsValidation(err))

	draft, err := s.Insert(ctx, types.Policy{Title: "Draft rules"})
	require.NoError(t, err)
	assert.Equal(t, types.PolicyDraft, draft.Status)
	assert.Equal(t, DefaultVersion, draft.Version)

	_, err = s.Active(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	pub, err := s.Insert(ctx, types.Policy{Title: "Published rules", Status: types.PolicyPublished, FullText: "full"})
	require.NoError(t, err)
	act, err := s.Insert(ctx, types.Policy{Title: "Active rules", Status: types.PolicyActive, Category: "tax"})
	require.NoError(t, err)

	got, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, act.ID, got.ID)
	assert.Equal(t, "tax", got.Category)

	p, err := s.Get(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, "full", p.FullText)

	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, act.ID, all[0].ID)

	drafts, err := s.List(ctx, Filter{Status: types.PolicyDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.now = stepClock()
	exercise(t, s)
}

func TestSQLStore_SQLite(t *testing.T) {
	s := NewSQLStore(openSQLite(t))
	s.now = stepClock()
	require.NoError(t, s.Migrate(context.Background()))
	exercise(t, s)
}

func openSQLite(t *testing.T) *sqlstore.DB {
	t.Helper()
	db, err := sqlstore.OpenSQLite(filepath.Join(t.TempDir(), "policy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLStore_SnakeCaseFallback(t *testing.T) {
	db := openSQLite(t)
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE "Policy" (
  id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT, full_text TEXT, version TEXT,
  status TEXT, category TEXT, created_at TIMESTAMP, updated_at TIMESTAMP
)`)
	require.NoError(t, err)

	s := NewSQLStore(db)
	s.now = stepClock()
	exercise(t, s)

	var fullText string
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT full_text FROM "Policy" WHERE status = 'published'`).Scan(&fullText))
	assert.Equal(t, "full", fullText)
}

func TestSQLStore_SchemaMismatch(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE "Policy" (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO "Policy" (id, name) VALUES ('p1', 'legacy')`)
	require.NoError(t, err)

	s := NewSQLStore(db)
	_, err = s.Insert(ctx, types.Policy{Title: "Rules"})
	require.ErrorIs(t, err, ErrSchemaMismatch)
	_, err = s.Get(ctx, "p1")
	require.ErrorIs(t, err, ErrSchemaMismatch)
	_, err = s.List(ctx, Filter{})
	require.ErrorIs(t, err, ErrSchemaMismatch)
	_, err = s.Active(ctx)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}
