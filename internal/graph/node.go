package graph

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the node variants
type Kind string

const (
	KindAction    Kind = "action"
	KindCondition Kind = "condition"
)

// Slot names an out-edge of a node
type Slot string

const (
	SlotNext      Slot = "next"
	SlotOnSuccess Slot = "onSuccess"
	SlotOnFailure Slot = "onFailure"
)

// Node is one step of a strategy. It is implemented only by ActionNode and
// ConditionNode; consumers switch on the concrete type.
type Node interface {
	NodeID() string
	NodeKind() Kind
	NodeLabel() string
	Payload() json.RawMessage

	sealed()
}

// ActionNode is a single executable step with at most one successor.
type ActionNode struct {
	ID       string
	Label    string
	Data     json.RawMessage
	Next     string
	Metadata map[string]any
}

func (n ActionNode) NodeID() string           { return n.ID }
func (n ActionNode) NodeKind() Kind           { return KindAction }
func (n ActionNode) NodeLabel() string        { return n.Label }
func (n ActionNode) Payload() json.RawMessage { return n.Data }
func (ActionNode) sealed()                    {}

// ConditionNode is a branch point with a success and a failure successor.
type ConditionNode struct {
	ID        string
	Label     string
	Data      json.RawMessage
	OnSuccess string
	OnFailure string
	Metadata  map[string]any
}

func (n ConditionNode) NodeID() string           { return n.ID }
func (n ConditionNode) NodeKind() Kind           { return KindCondition }
func (n ConditionNode) NodeLabel() string        { return n.Label }
func (n ConditionNode) Payload() json.RawMessage { return n.Data }
func (ConditionNode) sealed()                    {}

// EmptyPayload is the default data of a node created without one
var EmptyPayload = json.RawMessage(`{}`)

// DefaultPayload returns a copy of data, or an empty JSON object when data is
// empty
func DefaultPayload(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return append(json.RawMessage(nil), EmptyPayload...)
	}
	return append(json.RawMessage(nil), data...)
}

// Edge is derived from the out-edge slots of a node. It is never stored.
type Edge struct {
	From string
	To   string
	Slot Slot
}

// OutEdges lists the present out-edges of n in slot order.
func OutEdges(n Node) []Edge {
	switch v := n.(type) {
	case ActionNode:
		if v.Next == "" {
			return nil
		}
		return []Edge{{From: v.ID, To: v.Next, Slot: SlotNext}}
	case ConditionNode:
		edges := make([]Edge, 0, 2)
		if v.OnSuccess != "" {
			edges = append(edges, Edge{From: v.ID, To: v.OnSuccess, Slot: SlotOnSuccess})
		}
		if v.OnFailure != "" {
			edges = append(edges, Edge{From: v.ID, To: v.OnFailure, Slot: SlotOnFailure})
		}
		return edges
	default:
		panic(NewInvariantError("out-edges", fmt.Errorf("unknown node type %T", n)))
	}
}

// Supports reports whether slot is an out-edge of n's kind.
func Supports(n Node, slot Slot) bool {
	switch n.(type) {
	case ActionNode:
		return slot == SlotNext
	case ConditionNode:
		return slot == SlotOnSuccess || slot == SlotOnFailure
	default:
		return false
	}
}

// SetEdge returns a copy of n with slot pointing at to. An empty to clears
// the slot.
func SetEdge(n Node, slot Slot, to string) (Node, error) {
	switch v := n.(type) {
	case ActionNode:
		if slot != SlotNext {
			return nil, NewConflictError(
				fmt.Sprintf("Action node does not support '%s'", slot), ErrUnsupportedSlot)
		}
		v.Next = to
		return v, nil
	case ConditionNode:
		switch slot {
		case SlotOnSuccess:
			v.OnSuccess = to
		case SlotOnFailure:
			v.OnFailure = to
		default:
			return nil, NewConflictError(
				fmt.Sprintf("Condition node does not support '%s'", slot), ErrUnsupportedSlot)
		}
		return v, nil
	default:
		return nil, NewInvariantError("set-edge", fmt.Errorf("unknown node type %T", n))
	}
}

// EdgeTarget returns the id stored in slot, or "" when the slot is absent or
// unsupported.
func EdgeTarget(n Node, slot Slot) string {
	for _, e := range OutEdges(n) {
		if e.Slot == slot {
			return e.To
		}
	}
	return ""
}
