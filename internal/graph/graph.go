package graph

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a strategy graph
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused:
		return true
	}
	return false
}

// Graph is a strategy graph: a root, a lifecycle status and the nodes keyed
// by id. Insertion order of nodes is kept so lowering is deterministic.
type Graph struct {
	ID        string
	Root      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	nodes map[string]Node
	order []string
}

// New returns an empty draft graph
func New(id string, now time.Time) *Graph {
	return &Graph{
		ID:        id,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		nodes:     make(map[string]Node),
	}
}

// Put inserts or replaces a node. A new id is appended to the insertion
// order; a replaced node keeps its position. Put does not check invariants.
func (g *Graph) Put(n Node) error {
	switch v := n.(type) {
	case ActionNode, ConditionNode:
	case *ActionNode:
		n = *v
	case *ConditionNode:
		n = *v
	default:
		return NewInvariantError("put", fmt.Errorf("unknown node type %T", n))
	}
	id := n.NodeID()
	if id == "" {
		return NewInvariantError("put", fmt.Errorf("node has no id"))
	}
	if g.nodes == nil {
		g.nodes = make(map[string]Node)
	}
	if _, exists := g.nodes[id]; !exists {
		g.order = append(g.order, id)
	}
	g.nodes[id] = n
	return nil
}

// Delete removes a node without touching edges that point at it
func (g *Graph) Delete(id string) bool {
	if _, exists := g.nodes[id]; !exists {
		return false
	}
	delete(g.nodes, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the graph
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns node ids in insertion order
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Nodes returns the nodes in insertion order
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Clone returns a graph with its own node mapping. Node records are values,
// so later mutations of either graph are not visible in the other.
func (g *Graph) Clone() *Graph {
	c := *g
	c.nodes = make(map[string]Node, len(g.nodes))
	for id, n := range g.nodes {
		c.nodes[id] = n
	}
	c.order = append([]string(nil), g.order...)
	return &c
}

// Edges lists every edge of the graph: nodes in insertion order, slots in
// next, onSuccess, onFailure order.
func Edges(g *Graph) []Edge {
	var edges []Edge
	for _, id := range g.order {
		edges = append(edges, OutEdges(g.nodes[id])...)
	}
	return edges
}
