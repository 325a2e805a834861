package graph

import (
	"fmt"
	"io"
)

// Info represents the graph structure for visualization
type Info struct {
	Root  string
	Nodes []NodeInfo
	Edges []Edge
}

// NodeInfo is the printable summary of a node
type NodeInfo struct {
	ID    string
	Label string
	Kind  Kind
}

func (g *Graph) GetGraphInfo() *Info {
	info := &Info{
		Root:  g.Root,
		Nodes: make([]NodeInfo, 0, g.Len()),
		Edges: Edges(g),
	}
	for _, n := range g.Nodes() {
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:    n.NodeID(),
			Label: n.NodeLabel(),
			Kind:  n.NodeKind(),
		})
	}
	return info
}

// PrintGraph writes a human-readable outline of g to w
func (g *Graph) PrintGraph(w io.Writer) {
	info := g.GetGraphInfo()
	names := make(map[string]string, len(info.Nodes))
	for _, n := range info.Nodes {
		names[n.ID] = n.ID
		if n.Label != "" {
			names[n.ID] = n.Label
		}
	}
	name := func(id string) string {
		if v, ok := names[id]; ok {
			return v
		}
		return id + " (missing)"
	}

	fmt.Fprintf(w, "Strategy %s [%s]\n", g.ID, g.Status)
	fmt.Fprintf(w, "Root: %s\n\n", name(info.Root))

	fmt.Fprintln(w, "Nodes:")
	for _, n := range info.Nodes {
		marker := "-"
		if n.ID == info.Root {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", marker, name(n.ID), n.Kind)
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, e := range info.Edges {
		switch e.Slot {
		case SlotNext:
			fmt.Fprintf(w, "  %s --> %s\n", name(e.From), name(e.To))
		case SlotOnSuccess:
			fmt.Fprintf(w, "  %s --[success]--> %s\n", name(e.From), name(e.To))
		case SlotOnFailure:
			fmt.Fprintf(w, "  %s --[failure]--> %s\n", name(e.From), name(e.To))
		}
	}
}
