package store

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/avi3tal/stratagraph/internal/graph"
	"github.com/avi3tal/stratagraph/pkg/codec"
	"github.com/avi3tal/stratagraph/pkg/workflow"
)

// Repository saves and restores strategy graphs through a Store
type Repository struct {
	store  Store
	logger *slog.Logger
}

// RepositoryOption configures a Repository
type RepositoryOption func(*Repository)

// WithRepositoryLogger sets the logger used for save/load records
func WithRepositoryLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logger
	}
}

func NewRepository(store Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Save stores the document form of g under its id
func (r *Repository) Save(ctx context.Context, g *graph.Graph) error {
	doc, err := codec.Marshal(g)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, g.ID, doc); err != nil {
		return errors.Wrapf(err, "failed to save graph %s", g.ID)
	}
	r.logger.DebugContext(ctx, "graph saved", "graph_id", g.ID, "nodes", g.Len(), "bytes", len(doc))
	return nil
}

// Load restores the graph stored under id. The result is decoded but not
// validated.
func (r *Repository) Load(ctx context.Context, id string) (*graph.Graph, error) {
	doc, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load graph %s", id)
	}
	g, err := codec.ParseGraph(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode graph %s", id)
	}
	r.logger.DebugContext(ctx, "graph loaded", "graph_id", id, "nodes", g.Len())
	return g, nil
}

// Open restores the graph stored under id and returns a builder over it
func (r *Repository) Open(ctx context.Context, id string, opts ...workflow.Option) (*workflow.Builder, error) {
	g, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.Load(g, opts...), nil
}

// Delete removes the graph stored under id
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "failed to delete graph %s", id)
	}
	return nil
}
