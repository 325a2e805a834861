package codec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/stratagraph/internal/graph"
	"github.com/avi3tal/stratagraph/pkg/workflow"
)

// graphView is a comparable rendering of a graph: scalar fields, nodes by id
// and derived edges.
type graphView struct {
	ID        string
	Root      string
	Status    graph.Status
	CreatedAt int64
	UpdatedAt int64
	Nodes     map[string]graph.Node
	Edges     []graph.Edge
}

func view(g *graph.Graph) graphView {
	v := graphView{
		ID:        g.ID,
		Root:      g.Root,
		Status:    g.Status,
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
		Nodes:     make(map[string]graph.Node),
		Edges:     graph.Edges(g),
	}
	for _, n := range g.Nodes() {
		v.Nodes[n.NodeID()] = n
	}
	return v
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := workflow.NewBuilder("codec")
	branch := b.Begin("Start", json.RawMessage(`{"kind":"noop"}`)).ThenIf(
		workflow.Step{Label: "Check", Data: json.RawMessage(`{"kind":"price","below":2500}`)},
		workflow.Step{Label: "Trade", Data: json.RawMessage(`{"kind":"swap","amount":"100"}`)},
		workflow.Step{Label: "Fallback"},
	)
	require.NoError(t, branch.Err())
	_, err := b.SetStatus(graph.StatusPaused)
	require.NoError(t, err)
	return b.Get()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	g := sampleGraph(t)
	_, err := graph.Validate(g)
	require.NoError(t, err)

	data, err := Marshal(g)
	require.NoError(t, err)

	parsed, err := ParseGraph(data)
	require.NoError(t, err)

	if diff := cmp.Diff(view(g), view(parsed)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, g.CreatedAt.Equal(parsed.CreatedAt))
	assert.True(t, g.UpdatedAt.Equal(parsed.UpdatedAt))

	_, err = graph.Validate(parsed)
	require.NoError(t, err)
}

func TestRoundTripEmptyGraph(t *testing.T) {
	t.Parallel()
	g := workflow.NewBuilder("empty").Get()

	data, err := Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodes":[]`)

	parsed, err := ParseGraph(data)
	require.NoError(t, err)
	if diff := cmp.Diff(view(g), view(parsed)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentShape(t *testing.T) {
	t.Parallel()
	g := graph.New("doc", sampleGraph(t).CreatedAt)
	g.Root = "a"
	require.NoError(t, g.Put(graph.ActionNode{ID: "a", Label: "A", Data: json.RawMessage(`{"x":1}`), Next: "c"}))
	require.NoError(t, g.Put(graph.ConditionNode{ID: "c", OnSuccess: "a", Metadata: map[string]any{"note": "loop"}}))

	data, err := Marshal(g)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"draft"`, string(raw["status"]))
	assert.JSONEq(t, `[
		["a", {"type": "action", "id": "a", "label": "A", "data": {"x": 1}, "next": "c"}],
		["c", {"type": "condition", "id": "c", "data": {}, "onSuccess": "a", "metadata": {"note": "loop"}}]
	]`, string(raw["nodes"]))
}

// Decoding checks shape only: a cyclic graph decodes and is rejected later.
func TestParseDoesNotValidateSemantics(t *testing.T) {
	t.Parallel()
	doc := `{
		"id": "g", "root": "a", "status": "active", "createdAt": 1, "updatedAt": 2,
		"nodes": [
			["a", {"type": "action", "id": "a", "data": {}, "next": "b"}],
			["b", {"type": "action", "id": "b", "next": "a"}]
		]
	}`

	g, err := ParseGraph([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.IDs())
	n, _ := g.Node("b")
	assert.JSONEq(t, `{}`, string(n.Payload()))

	_, err = graph.Validate(g)
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		doc   string
		issue string
	}{
		{
			name:  "not_json",
			doc:   `{"id":`,
			issue: "malformed document",
		},
		{
			name:  "wrong_scalar_type",
			doc:   `{"id": 7, "root": "", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": []}`,
			issue: "malformed document",
		},
		{
			name:  "missing_nodes",
			doc:   `{"id": "g", "root": "", "status": "draft", "createdAt": 0, "updatedAt": 0}`,
			issue: "nodes: field is required",
		},
		{
			name:  "bad_status",
			doc:   `{"id": "g", "root": "", "status": "archived", "createdAt": 0, "updatedAt": 0, "nodes": []}`,
			issue: `status: "archived"`,
		},
		{
			name:  "bad_tag",
			doc:   `{"id": "g", "root": "a", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": [["a", {"type": "loop", "id": "a"}]]}`,
			issue: `type "loop" is not action or condition`,
		},
		{
			name:  "key_mismatch",
			doc:   `{"id": "g", "root": "a", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": [["a", {"type": "action", "id": "b"}]]}`,
			issue: `key "a" does not match record id "b"`,
		},
		{
			name:  "duplicate_key",
			doc:   `{"id": "g", "root": "a", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": [["a", {"type": "action", "id": "a"}], ["a", {"type": "action", "id": "a"}]]}`,
			issue: `duplicate id "a"`,
		},
		{
			name:  "foreign_slot",
			doc:   `{"id": "g", "root": "c", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": [["c", {"type": "condition", "id": "c", "next": "c"}]]}`,
			issue: "condition node cannot have next",
		},
		{
			name:  "bad_pair",
			doc:   `{"id": "g", "root": "a", "status": "draft", "createdAt": 0, "updatedAt": 0, "nodes": [["a"]]}`,
			issue: "must have 2 elements",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseGraph([]byte(tc.doc))
			var verr *graph.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tc.issue)
		})
	}
}

func TestParseReportsAllIssues(t *testing.T) {
	t.Parallel()
	doc := `{"id": "", "root": "", "status": "gone", "createdAt": 0, "updatedAt": 0, "nodes": [
		["a", {"type": "action", "id": "a", "onFailure": "b"}],
		["b", {"type": "branch", "id": "b"}]
	]}`

	_, err := ParseGraph([]byte(doc))
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 4)
}
