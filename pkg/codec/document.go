package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/avi3tal/stratagraph/internal/graph"
)

// Document is the storable form of a graph. Nodes are an ordered list of
// [id, record] pairs so transports without a map type can carry them.
type Document struct {
	ID        string      `json:"id"`
	Root      string      `json:"root"`
	Status    string      `json:"status"`
	CreatedAt int64       `json:"createdAt"`
	UpdatedAt int64       `json:"updatedAt"`
	Nodes     []NodeEntry `json:"nodes"`
}

// NodeEntry is one [id, record] pair
type NodeEntry struct {
	ID     string
	Record NodeRecord
}

// NodeRecord is the tagged form of a node; Type is "action" or "condition"
type NodeRecord struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Label     string          `json:"label,omitempty"`
	Data      json.RawMessage `json:"data"`
	Next      *string         `json:"next,omitempty"`
	OnSuccess *string         `json:"onSuccess,omitempty"`
	OnFailure *string         `json:"onFailure,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

func (e NodeEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ID, e.Record})
}

func (e *NodeEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("node entry must be an [id, record] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("node entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return fmt.Errorf("node entry id must be a string: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Record); err != nil {
		return fmt.Errorf("node entry %q: %w", e.ID, err)
	}
	return nil
}

// ToDocument flattens g into a Document, keeping node insertion order
func ToDocument(g *graph.Graph) Document {
	doc := Document{
		ID:        g.ID,
		Root:      g.Root,
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
		Nodes:     make([]NodeEntry, 0, g.Len()),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeEntry{ID: n.NodeID(), Record: toRecord(n)})
	}
	return doc
}

func toRecord(n graph.Node) NodeRecord {
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	switch v := n.(type) {
	case graph.ActionNode:
		return NodeRecord{
			Type:     string(graph.KindAction),
			ID:       v.ID,
			Label:    v.Label,
			Data:     graph.DefaultPayload(v.Data),
			Next:     optional(v.Next),
			Metadata: v.Metadata,
		}
	case graph.ConditionNode:
		return NodeRecord{
			Type:      string(graph.KindCondition),
			ID:        v.ID,
			Label:     v.Label,
			Data:      graph.DefaultPayload(v.Data),
			OnSuccess: optional(v.OnSuccess),
			OnFailure: optional(v.OnFailure),
			Metadata:  v.Metadata,
		}
	default:
		panic(graph.NewInvariantError("to-record", fmt.Errorf("unknown node type %T", n)))
	}
}

// Marshal encodes g as a JSON document
func Marshal(g *graph.Graph) ([]byte, error) {
	data, err := json.Marshal(ToDocument(g))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal graph %s", g.ID)
	}
	return data, nil
}

// ParseGraph decodes a JSON document into a graph. Only the shape of the
// document is checked; the result must still go through graph.Validate
// before it is encoded.
func ParseGraph(data []byte) (*graph.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, graph.NewValidationError([]string{fmt.Sprintf("malformed document: %v", err)})
	}
	if doc.Nodes == nil && !hasNodes(data) {
		return nil, graph.NewValidationError([]string{"nodes: field is required"})
	}
	return FromDocument(doc)
}

// FromDocument rebuilds a graph from its document form, reporting every
// shape problem at once.
func FromDocument(doc Document) (*graph.Graph, error) {
	var issues []string
	if doc.ID == "" {
		issues = append(issues, "id: must be a non-empty string")
	}
	status := graph.Status(doc.Status)
	if !status.Valid() {
		issues = append(issues, fmt.Sprintf("status: %q is not one of draft, active, paused", doc.Status))
	}

	g := graph.New(doc.ID, time.UnixMilli(doc.CreatedAt).UTC())
	g.Root = doc.Root
	g.Status = status
	g.UpdatedAt = time.UnixMilli(doc.UpdatedAt).UTC()

	seen := make(map[string]bool, len(doc.Nodes))
	for i, entry := range doc.Nodes {
		node, problems := fromRecord(i, entry)
		issues = append(issues, problems...)
		if node == nil {
			continue
		}
		if seen[entry.ID] {
			issues = append(issues, fmt.Sprintf("nodes[%d]: duplicate id %q", i, entry.ID))
			continue
		}
		seen[entry.ID] = true
		if err := g.Put(node); err != nil {
			issues = append(issues, fmt.Sprintf("nodes[%d]: %v", i, err))
		}
	}

	if len(issues) > 0 {
		return nil, graph.NewValidationError(issues)
	}
	return g, nil
}

func fromRecord(i int, entry NodeEntry) (graph.Node, []string) {
	var issues []string
	rec := entry.Record
	if entry.ID == "" {
		issues = append(issues, fmt.Sprintf("nodes[%d]: id must be a non-empty string", i))
	}
	if rec.ID != entry.ID {
		issues = append(issues, fmt.Sprintf("nodes[%d]: key %q does not match record id %q", i, entry.ID, rec.ID))
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	data := rec.Data
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = graph.DefaultPayload(nil)
	}

	var node graph.Node
	switch graph.Kind(rec.Type) {
	case graph.KindAction:
		if rec.OnSuccess != nil || rec.OnFailure != nil {
			issues = append(issues, fmt.Sprintf("nodes[%d]: action node cannot have onSuccess or onFailure", i))
		}
		node = graph.ActionNode{
			ID:       rec.ID,
			Label:    rec.Label,
			Data:     data,
			Next:     deref(rec.Next),
			Metadata: rec.Metadata,
		}
	case graph.KindCondition:
		if rec.Next != nil {
			issues = append(issues, fmt.Sprintf("nodes[%d]: condition node cannot have next", i))
		}
		node = graph.ConditionNode{
			ID:        rec.ID,
			Label:     rec.Label,
			Data:      data,
			OnSuccess: deref(rec.OnSuccess),
			OnFailure: deref(rec.OnFailure),
			Metadata:  rec.Metadata,
		}
	default:
		issues = append(issues, fmt.Sprintf("nodes[%d]: type %q is not action or condition", i, rec.Type))
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return node, nil
}

// hasNodes reports whether the raw document carries a nodes field at all
func hasNodes(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	raw, ok := probe["nodes"]
	return ok && !bytes.Equal(raw, []byte("null"))
}
