package types

import "github.com/avi3tal/stratagraph/internal/graph"

type (
	ValidationError = graph.ValidationError
	InvariantError  = graph.InvariantError
	EncodingError   = graph.EncodingError
	NotFoundError   = graph.NotFoundError
	ConflictError   = graph.ConflictError
)

var (
	ErrWouldCreateCycle = graph.ErrWouldCreateCycle
	ErrUnsupportedSlot  = graph.ErrUnsupportedSlot
)
