package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/avi3tal/stratagraph/internal/graph"
)

// Step describes a node to create from the flow DSL
type Step struct {
	Label string
	Data  json.RawMessage
}

// FlowStep references a node that was just added through the DSL. Errors
// latch: once a step has failed, every call on it or its successors is a no-op
// that carries the first error.
type FlowStep struct {
	b   *Builder
	id  string
	err error
}

// Err returns the first error recorded along the chain
func (fs *FlowStep) Err() error {
	return fs.err
}

// ID returns the id of the referenced node
func (fs *FlowStep) ID() string {
	return fs.id
}

// Begin adds an action. On an empty graph it becomes the root.
func (b *Builder) Begin(label string, data json.RawMessage) *FlowStep {
	n := b.AddAction(label, data)
	return &FlowStep{b: b, id: n.ID}
}

// Step returns a FlowStep for an existing node
func (b *Builder) Step(id string) *FlowStep {
	if !b.graph.Has(id) {
		return &FlowStep{b: b, id: id, err: graph.NewNotFoundError("node", id)}
	}
	return &FlowStep{b: b, id: id}
}

// Then creates a simple sequential link from the current action to a new one.
func (fs *FlowStep) Then(label string, data json.RawMessage) *FlowStep {
	if fs.err != nil {
		return fs
	}
	n := fs.b.AddAction(label, data)
	if _, err := fs.b.Connect(fs.id, graph.SlotNext, n.ID); err != nil {
		return &FlowStep{b: fs.b, id: n.ID, err: fmt.Errorf("Then(%q) failed: %w", label, err)}
	}
	return &FlowStep{b: fs.b, id: n.ID}
}

// Branch holds the two successors of a condition added with ThenIf
type Branch struct {
	Condition *FlowStep
	Success   *FlowStep
	Failure   *FlowStep
}

// Err returns the first error of the branch
func (br Branch) Err() error {
	for _, fs := range []*FlowStep{br.Condition, br.Success, br.Failure} {
		if fs != nil && fs.err != nil {
			return fs.err
		}
	}
	return nil
}

// ThenIf creates a condition after the current action with an action on each
// outcome.
func (fs *FlowStep) ThenIf(cond, success, failure Step) Branch {
	if fs.err != nil {
		return Branch{Condition: fs, Success: fs, Failure: fs}
	}

	c := fs.b.AddCondition(cond.Label, cond.Data)
	condStep := &FlowStep{b: fs.b, id: c.ID}
	if _, err := fs.b.Connect(fs.id, graph.SlotNext, c.ID); err != nil {
		condStep.err = fmt.Errorf("ThenIf(%q) failed: %w", cond.Label, err)
		return Branch{Condition: condStep, Success: condStep, Failure: condStep}
	}

	return Branch{
		Condition: condStep,
		Success:   condStep.on(graph.SlotOnSuccess, success),
		Failure:   condStep.on(graph.SlotOnFailure, failure),
	}
}

func (fs *FlowStep) on(slot graph.Slot, s Step) *FlowStep {
	n := fs.b.AddAction(s.Label, s.Data)
	if _, err := fs.b.Connect(fs.id, slot, n.ID); err != nil {
		return &FlowStep{b: fs.b, id: n.ID, err: fmt.Errorf("%s(%q) failed: %w", slot, s.Label, err)}
	}
	return &FlowStep{b: fs.b, id: n.ID}
}
