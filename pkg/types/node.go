package types

import (
	"github.com/avi3tal/stratagraph/internal/chain"
	"github.com/avi3tal/stratagraph/internal/graph"
)

type (
	Graph         = graph.Graph
	Node          = graph.Node
	ActionNode    = graph.ActionNode
	ConditionNode = graph.ConditionNode
	Edge          = graph.Edge
	Slot          = graph.Slot
	Kind          = graph.Kind

	Instruction          = chain.Instruction
	ActionInstruction    = chain.ActionInstruction
	ConditionInstruction = chain.ConditionInstruction
)

const (
	SlotNext      = graph.SlotNext
	SlotOnSuccess = graph.SlotOnSuccess
	SlotOnFailure = graph.SlotOnFailure

	KindAction    = graph.KindAction
	KindCondition = graph.KindCondition
)
