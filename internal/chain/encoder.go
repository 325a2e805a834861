package chain

import (
	"encoding/json"
	"fmt"

	"github.com/avi3tal/stratagraph/internal/graph"
)

// Instruction is one entry of the lowered program. Exactly one of Action or
// Condition is set.
type Instruction struct {
	Action    *ActionInstruction    `json:"action,omitempty"`
	Condition *ConditionInstruction `json:"condition,omitempty"`
}

// ActionInstruction runs a step and continues at Next, or stops when Next is nil
type ActionInstruction struct {
	Index  int             `json:"index"`
	Action json.RawMessage `json:"action"`
	Next   *int            `json:"next"`
}

// ConditionInstruction evaluates a predicate and branches
type ConditionInstruction struct {
	Index     int             `json:"index"`
	Condition json.RawMessage `json:"condition"`
	OnSuccess *int            `json:"on_success"`
	OnFailure *int            `json:"on_failure"`
}

// Index returns the position of the instruction in its program, or -1 for
// an empty instruction
func (i Instruction) Index() int {
	switch {
	case i.Action != nil:
		return i.Action.Index
	case i.Condition != nil:
		return i.Condition.Index
	}
	return -1
}

// Encode validates g and lowers it into an index-addressed instruction list.
// Every edge points from an earlier to a later position. Indices are only
// meaningful within the returned slice; encoding a mutated graph may renumber
// unrelated nodes.
func Encode(g *graph.Graph) ([]Instruction, error) {
	if _, err := graph.Validate(g); err != nil {
		return nil, err
	}

	order, err := TopologicalOrder(g)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	ref := func(from, to string) (*int, error) {
		if to == "" {
			return nil, nil
		}
		i, ok := index[to]
		if !ok {
			return nil, graph.NewEncodingError("resolve", from, fmt.Errorf("successor %q is not in the graph", to))
		}
		return &i, nil
	}

	program := make([]Instruction, 0, len(order))
	for i, id := range order {
		n, _ := g.Node(id)
		switch v := n.(type) {
		case graph.ActionNode:
			next, err := ref(id, v.Next)
			if err != nil {
				return nil, err
			}
			program = append(program, Instruction{Action: &ActionInstruction{
				Index:  i,
				Action: graph.DefaultPayload(v.Data),
				Next:   next,
			}})
		case graph.ConditionNode:
			onSuccess, err := ref(id, v.OnSuccess)
			if err != nil {
				return nil, err
			}
			onFailure, err := ref(id, v.OnFailure)
			if err != nil {
				return nil, err
			}
			program = append(program, Instruction{Condition: &ConditionInstruction{
				Index:     i,
				Condition: graph.DefaultPayload(v.Data),
				OnSuccess: onSuccess,
				OnFailure: onFailure,
			}})
		default:
			return nil, graph.NewInvariantError("encode", fmt.Errorf("unknown node type %T", n))
		}
	}
	return program, nil
}

// TopologicalOrder runs Kahn's algorithm over g, seeding the queue with the
// zero in-degree nodes in insertion order. Edges to ids outside the graph do
// not count.
func TopologicalOrder(g *graph.Graph) ([]string, error) {
	ids := g.IDs()
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for _, e := range graph.Edges(g) {
		if _, ok := inDegree[e.To]; ok {
			inDegree[e.To]++
		}
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		n, _ := g.Node(id)
		for _, e := range graph.OutEdges(n) {
			if _, ok := inDegree[e.To]; !ok {
				continue
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if len(order) != len(ids) {
		return nil, graph.NewEncodingError("sort", "",
			fmt.Errorf("%w: ordered %d of %d", graph.ErrTopologicalOrder, len(order), len(ids)))
	}
	return order, nil
}
