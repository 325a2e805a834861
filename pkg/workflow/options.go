package workflow

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avi3tal/stratagraph/internal/graph"
)

// Option configures a Builder
type Option func(*Builder)

// WithGraphID sets the id of the graph instead of generating one
func WithGraphID(id string) Option {
	return func(b *Builder) {
		b.graphID = id
	}
}

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithIDGenerator replaces the uuid generator used for node ids
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		b.newID = gen
	}
}

// WithLogger sets the logger that records mutations at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithStatus sets the status of a new graph. Unknown values leave it draft.
// Load keeps the status of the restored graph.
func WithStatus(status graph.Status) Option {
	return func(b *Builder) {
		b.status = status
	}
}

func defaultOptions(b *Builder) {
	b.now = time.Now
	b.newID = uuid.NewString
	b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}
