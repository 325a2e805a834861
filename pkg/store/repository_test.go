package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/stratagraph/internal/graph"
	"github.com/avi3tal/stratagraph/pkg/workflow"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "missing")

	doc := []byte(`{"v":1}`)
	require.NoError(t, s.Set(ctx, "k", doc))
	doc[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(got), "store keeps its own copy")

	require.NoError(t, s.Set(ctx, "k", []byte(`{"v":2}`)))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "shared", []byte(`{}`))
			_, _ = s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestRepositorySaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())

	b := workflow.NewBuilder("repo")
	branch := b.Begin("Start", json.RawMessage(`{"kind":"noop"}`)).ThenIf(
		workflow.Step{Label: "Check"},
		workflow.Step{Label: "Trade"},
		workflow.Step{Label: "Fallback"},
	)
	require.NoError(t, branch.Err())
	g := b.Get()

	require.NoError(t, repo.Save(ctx, g))
	loaded, err := repo.Load(ctx, g.ID)
	require.NoError(t, err)

	assert.Equal(t, g.IDs(), loaded.IDs())
	assert.Equal(t, g.Root, loaded.Root)
	if diff := cmp.Diff(graph.Edges(g), graph.Edges(loaded)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	restored, err := repo.Open(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, restored.Get().ID)
	program, err := restored.EncodeChain()
	require.NoError(t, err)
	assert.Len(t, program, 4)

	require.NoError(t, repo.Delete(ctx, g.ID))
	_, err = repo.Load(ctx, g.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryLoadInvalidDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "broken", []byte(`{"id":"broken","status":"nope","nodes":[]}`)))

	_, err := NewRepository(s).Load(ctx, "broken")
	var verr *graph.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "failed to decode graph broken")
}
