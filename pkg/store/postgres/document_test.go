package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/stratagraph/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "postgres-test-strategy"
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, key, []byte(`{"id":"a"}`)))
	require.NoError(t, s.Set(ctx, key, []byte(`{"id":"b"}`)))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"b"}`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepositoryOverPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := store.NewRepository(s)

	_, err := repo.Load(ctx, "does-not-exist")
	require.ErrorIs(t, err, store.ErrNotFound)
}
