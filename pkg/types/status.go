package types

import "github.com/avi3tal/stratagraph/internal/graph"

// GraphStatus represents the lifecycle state of a strategy graph
type GraphStatus = graph.Status

const (
	StatusDraft  = graph.StatusDraft
	StatusActive = graph.StatusActive
	StatusPaused = graph.StatusPaused
)
