package workflow

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avi3tal/stratagraph/internal/chain"
	"github.com/avi3tal/stratagraph/internal/graph"
)

const defaultGraphName = "strategy"

// Builder is the only way to mutate a strategy graph. Every accessor hands
// out a snapshot, so callers never hold a reference into builder state.
// A Builder is not safe for concurrent use.
type Builder struct {
	name    string
	graphID string
	graph   *graph.Graph
	status  graph.Status

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewBuilder creates a builder over an empty draft graph. Unless WithGraphID
// is given the graph id is the name followed by a fresh uuid.
func NewBuilder(name string, opts ...Option) *Builder {
	graphName := defaultGraphName
	if name != "" {
		graphName = name
	}

	b := &Builder{name: graphName}
	defaultOptions(b)
	for _, o := range opts {
		o(b)
	}

	if b.graphID == "" {
		b.graphID = fmt.Sprintf("%s-%s", strings.ReplaceAll(graphName, " ", "-"), uuid.NewString())
	}
	b.graph = graph.New(b.graphID, b.stamp())
	if b.status.Valid() {
		b.graph.Status = b.status
	}
	b.logger = b.logger.With("graph_id", b.graphID)
	return b
}

// Load creates a builder over a copy of an existing graph, e.g. one restored
// from storage. The graph is not validated.
func Load(g *graph.Graph, opts ...Option) *Builder {
	b := &Builder{name: g.ID, graphID: g.ID}
	defaultOptions(b)
	for _, o := range opts {
		o(b)
	}
	b.graph = g.Clone()
	b.logger = b.logger.With("graph_id", g.ID)
	return b
}

// Get returns a snapshot of the graph
func (b *Builder) Get() *graph.Graph {
	return b.graph.Clone()
}

// AddAction adds an action node. The first node added becomes the root.
func (b *Builder) AddAction(label string, data json.RawMessage) graph.ActionNode {
	n := graph.ActionNode{
		ID:    b.nextID(),
		Label: label,
		Data:  graph.DefaultPayload(data),
	}
	b.insert(n)
	return n
}

// AddCondition adds a condition node. The first node added becomes the root.
func (b *Builder) AddCondition(label string, data json.RawMessage) graph.ConditionNode {
	n := graph.ConditionNode{
		ID:    b.nextID(),
		Label: label,
		Data:  graph.DefaultPayload(data),
	}
	b.insert(n)
	return n
}

// nextID asks the configured generator for a node id and falls back to a
// fresh uuid when the generator returns an empty or taken id
func (b *Builder) nextID() string {
	id := b.newID()
	if id != "" && !b.graph.Has(id) {
		return id
	}
	fallback := uuid.NewString()
	for b.graph.Has(fallback) {
		fallback = uuid.NewString()
	}
	b.logger.Warn("generated node id unusable", "node_id", id, "fallback", fallback)
	return fallback
}

func (b *Builder) insert(n graph.Node) {
	if err := b.graph.Put(n); err != nil {
		// nextID never hands out an empty id
		panic(err)
	}
	if b.graph.Len() == 1 && b.graph.Root == "" {
		b.graph.Root = n.NodeID()
	}
	b.touch()
	b.logger.Debug("node added", "node_id", n.NodeID(), "kind", n.NodeKind(), "root", b.graph.Root)
}

// Connect points slot of from at to. The graph is unchanged on failure.
func (b *Builder) Connect(from string, slot graph.Slot, to string) (*graph.Graph, error) {
	src, ok := b.graph.Node(from)
	if !ok {
		return nil, graph.NewNotFoundError("node", from)
	}
	if !b.graph.Has(to) {
		return nil, graph.NewNotFoundError("node", to)
	}
	if graph.WouldCreateCycle(b.graph, from, to) {
		b.logger.Warn("connect rejected", "from", from, "slot", slot, "to", to, "reason", graph.ErrWouldCreateCycle)
		return nil, graph.NewConflictError(
			fmt.Sprintf("connecting %s -> %s would create cycle", from, to), graph.ErrWouldCreateCycle)
	}

	updated, err := graph.SetEdge(src, slot, to)
	if err != nil {
		b.logger.Warn("connect rejected", "from", from, "slot", slot, "to", to, "reason", err)
		return nil, err
	}
	if err := b.graph.Put(updated); err != nil {
		return nil, err
	}
	b.touch()
	b.logger.Debug("nodes connected", "from", from, "slot", slot, "to", to)
	return b.Get(), nil
}

// Disconnect clears slot of from. Clearing an absent edge is a no-op.
func (b *Builder) Disconnect(from string, slot graph.Slot) (*graph.Graph, error) {
	src, ok := b.graph.Node(from)
	if !ok {
		return nil, graph.NewNotFoundError("node", from)
	}
	if graph.EdgeTarget(src, slot) == "" {
		return b.Get(), nil
	}

	updated, err := graph.SetEdge(src, slot, "")
	if err != nil {
		return nil, err
	}
	if err := b.graph.Put(updated); err != nil {
		return nil, err
	}
	b.touch()
	b.logger.Debug("nodes disconnected", "from", from, "slot", slot)
	return b.Get(), nil
}

// Remove deletes a node and clears every edge that pointed at it. If the
// node was the root, the first remaining node in insertion order becomes the
// root, or the root is cleared when the graph is empty.
func (b *Builder) Remove(id string) (*graph.Graph, error) {
	if !b.graph.Has(id) {
		return nil, graph.NewNotFoundError("node", id)
	}

	for _, n := range b.graph.Nodes() {
		if n.NodeID() == id {
			continue
		}
		for _, e := range graph.OutEdges(n) {
			if e.To != id {
				continue
			}
			updated, err := graph.SetEdge(n, e.Slot, "")
			if err != nil {
				return nil, err
			}
			n = updated
		}
		if err := b.graph.Put(n); err != nil {
			return nil, err
		}
	}

	b.graph.Delete(id)
	if b.graph.Root == id {
		b.graph.Root = ""
		if ids := b.graph.IDs(); len(ids) > 0 {
			b.graph.Root = ids[0]
		}
	}
	b.touch()
	b.logger.Debug("node removed", "node_id", id, "root", b.graph.Root)
	return b.Get(), nil
}

// AddActionAndConnect adds an action and connects slot of from to it. The
// new node stays in the graph even when the connect fails.
func (b *Builder) AddActionAndConnect(from string, slot graph.Slot, label string, data json.RawMessage) (*graph.Graph, error) {
	n := b.AddAction(label, data)
	return b.Connect(from, slot, n.ID)
}

// AddConditionAndConnect adds a condition and connects slot of from to it.
// The new node stays in the graph even when the connect fails.
func (b *Builder) AddConditionAndConnect(from string, slot graph.Slot, label string, data json.RawMessage) (*graph.Graph, error) {
	n := b.AddCondition(label, data)
	return b.Connect(from, slot, n.ID)
}

// SetStatus moves the graph to another lifecycle status
func (b *Builder) SetStatus(status graph.Status) (*graph.Graph, error) {
	if !status.Valid() {
		return nil, graph.NewConflictError(fmt.Sprintf("unknown status %q", status), nil)
	}
	b.graph.Status = status
	b.touch()
	b.logger.Debug("status changed", "status", status)
	return b.Get(), nil
}

// Validate runs every validation check over a snapshot of the graph
func (b *Builder) Validate() (*graph.Graph, error) {
	return graph.Validate(b.Get())
}

// EncodeChain validates the graph and lowers it into chain instructions
func (b *Builder) EncodeChain() ([]chain.Instruction, error) {
	return chain.Encode(b.Get())
}

func (b *Builder) touch() {
	b.graph.UpdatedAt = b.stamp()
}

// stamp truncates to milliseconds, the resolution stored documents keep
func (b *Builder) stamp() time.Time {
	return b.now().UTC().Truncate(time.Millisecond)
}
