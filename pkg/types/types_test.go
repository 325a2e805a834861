package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/stratagraph/pkg/workflow"
)

func TestAliasesMatchBuilderTypes(t *testing.T) {
	t.Parallel()
	b := workflow.NewBuilder("types")
	var action ActionNode = b.AddAction("A", nil)
	var cond ConditionNode = b.AddCondition("C", nil)

	var g *Graph = b.Get()
	assert.Equal(t, StatusDraft, g.Status)
	assert.Equal(t, KindAction, action.NodeKind())
	assert.Equal(t, KindCondition, cond.NodeKind())

	_, err := b.Connect(cond.ID, SlotNext, action.ID)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.ErrorIs(t, err, ErrUnsupportedSlot)

	_, err = b.EncodeChain()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = b.Connect(action.ID, SlotNext, cond.ID)
	require.NoError(t, err)
	var program []Instruction
	program, err = b.EncodeChain()
	require.NoError(t, err)
	assert.Len(t, program, 2)
}
