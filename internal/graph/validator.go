package graph

import (
	"encoding/json"
	"fmt"
)

// ValidateOptions selects which checks Validate runs
type ValidateOptions struct {
	RequireReachable bool
	ForbidCycles     bool
	EnforceDegree    bool
	CheckPayloads    bool
}

// ValidateOption configures a validation pass
type ValidateOption func(*ValidateOptions)

// WithoutReachability skips the root existence and reachability checks
func WithoutReachability() ValidateOption {
	return func(o *ValidateOptions) {
		o.RequireReachable = false
	}
}

// AllowCycles skips cycle detection
func AllowCycles() ValidateOption {
	return func(o *ValidateOptions) {
		o.ForbidCycles = false
	}
}

// WithoutDegreeCheck skips the self-loop checks
func WithoutDegreeCheck() ValidateOption {
	return func(o *ValidateOptions) {
		o.EnforceDegree = false
	}
}

// WithoutPayloadCheck skips the check that node data is well-formed JSON
func WithoutPayloadCheck() ValidateOption {
	return func(o *ValidateOptions) {
		o.CheckPayloads = false
	}
}

// Validate checks g against the graph invariants and returns it unchanged
// when it holds them all. Otherwise every issue found is reported in a
// single ValidationError.
func Validate(g *Graph, opts ...ValidateOption) (*Graph, error) {
	options := ValidateOptions{
		RequireReachable: true,
		ForbidCycles:     true,
		EnforceDegree:    true,
		CheckPayloads:    true,
	}
	for _, o := range opts {
		o(&options)
	}

	var issues []string
	if options.RequireReachable {
		issues = append(issues, checkRoot(g)...)
		issues = append(issues, checkReachable(g)...)
	}
	if options.EnforceDegree {
		issues = append(issues, checkSelfLoops(g)...)
	}
	if options.ForbidCycles {
		issues = append(issues, checkCycles(g)...)
	}
	if options.CheckPayloads {
		issues = append(issues, checkPayloads(g)...)
	}

	if len(issues) > 0 {
		return nil, NewValidationError(issues)
	}
	return g, nil
}

func checkRoot(g *Graph) []string {
	if g.Root == "" {
		if g.Len() > 0 {
			return []string{"root is not set"}
		}
		return nil
	}
	if !g.Has(g.Root) {
		return []string{fmt.Sprintf("root node %q does not exist", g.Root)}
	}
	return nil
}

// checkReachable walks breadth-first from the root. Edges to ids that are not
// in the graph are not followed.
func checkReachable(g *Graph) []string {
	visited := make(map[string]bool, g.Len())
	if g.Has(g.Root) {
		queue := []string{g.Root}
		visited[g.Root] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, e := range OutEdges(g.nodes[id]) {
				if visited[e.To] || !g.Has(e.To) {
					continue
				}
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	var issues []string
	for _, n := range g.Nodes() {
		if !visited[n.NodeID()] {
			issues = append(issues, fmt.Sprintf("node %q (%s) is unreachable from root", n.NodeID(), describe(n)))
		}
	}
	return issues
}

func checkSelfLoops(g *Graph) []string {
	var issues []string
	for _, n := range g.Nodes() {
		for _, e := range OutEdges(n) {
			if e.To == e.From {
				issues = append(issues, fmt.Sprintf("%s node %q: %s points to itself", n.NodeKind(), e.From, e.Slot))
			}
		}
	}
	return issues
}

// checkPayloads reports data that could not be marshaled. Empty data is
// treated as an empty object.
func checkPayloads(g *Graph) []string {
	var issues []string
	for _, n := range g.Nodes() {
		if data := n.Payload(); len(data) > 0 && !json.Valid(data) {
			issues = append(issues, fmt.Sprintf("%s node %q: data is not valid JSON", n.NodeKind(), n.NodeID()))
		}
	}
	return issues
}

// checkCycles is a white/gray/black depth-first search over the derived edge
// list. Each node found gray on a revisit is reported once.
func checkCycles(g *Graph) []string {
	const (
		white = iota
		gray
		black
	)

	adj := make(map[string][]string, g.Len())
	for _, e := range Edges(g) {
		adj[e.From] = append(adj[e.From], e.To)
	}

	color := make(map[string]int, g.Len())
	reported := make(map[string]bool)
	var issues []string

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, next := range adj[id] {
			if !g.Has(next) {
				continue
			}
			switch color[next] {
			case gray:
				if !reported[next] {
					reported[next] = true
					issues = append(issues, fmt.Sprintf("node %q participates in a cycle", next))
				}
			case white:
				visit(next)
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			visit(id)
		}
	}
	return issues
}

// WouldCreateCycle reports whether adding the edge from -> to would make some
// node reachable from itself.
func WouldCreateCycle(g *Graph, from, to string) bool {
	if from == to {
		return true
	}

	visited := make(map[string]bool)
	stack := []string{to}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == from {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true

		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		for _, e := range OutEdges(n) {
			if !visited[e.To] {
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

func describe(n Node) string {
	if n.NodeLabel() != "" {
		return n.NodeLabel()
	}
	return string(n.NodeKind())
}
