// Package hclstrategy builds strategy graphs from HCL files of action and
// condition blocks. Blocks are added in file order, so the first block is the
// root; references between blocks use block names and are wired through the
// Builder, which rejects cycles as they are connected.
package hclstrategy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/avi3tal/stratagraph/internal/graph"
	"github.com/avi3tal/stratagraph/pkg/workflow"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "action", LabelNames: []string{"name"}},
		{Type: "condition", LabelNames: []string{"name"}},
	},
}

type actionBlock struct {
	Label string         `hcl:"label,optional"`
	Data  hcl.Expression `hcl:"data,optional"`
	Next  *string        `hcl:"next,optional"`
}

type conditionBlock struct {
	Label     string         `hcl:"label,optional"`
	Data      hcl.Expression `hcl:"data,optional"`
	OnSuccess *string        `hcl:"on_success,optional"`
	OnFailure *string        `hcl:"on_failure,optional"`
}

type link struct {
	from string
	slot graph.Slot
	to   string
	rng  hcl.Range
}

// ParseFile reads and parses a strategy file from disk.
func ParseFile(path string, opts ...workflow.Option) (*workflow.Builder, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read strategy file %s", path)
	}
	return Parse(path, src, opts...)
}

// Parse builds a strategy from HCL source. filename is only used in
// diagnostics.
func Parse(filename string, src []byte, opts ...workflow.Option) (*workflow.Builder, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse %s", filename)
	}
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to decode %s", filename)
	}

	b := workflow.NewBuilder("", opts...)
	ids := make(map[string]string, len(content.Blocks))
	var links []link

	for _, block := range content.Blocks {
		name := block.Labels[0]
		if _, exists := ids[name]; exists {
			return nil, fmt.Errorf("%s: duplicate block name %q", block.DefRange, name)
		}

		switch block.Type {
		case "action":
			var ab actionBlock
			if diags := gohcl.DecodeBody(block.Body, nil, &ab); diags.HasErrors() {
				return nil, errors.Wrapf(diags, "action %q", name)
			}
			data, err := payload(ab.Data)
			if err != nil {
				return nil, errors.Wrapf(err, "action %q", name)
			}
			ids[name] = b.AddAction(labelOr(ab.Label, name), data).ID
			links = appendLink(links, name, graph.SlotNext, ab.Next, block.DefRange)
		case "condition":
			var cb conditionBlock
			if diags := gohcl.DecodeBody(block.Body, nil, &cb); diags.HasErrors() {
				return nil, errors.Wrapf(diags, "condition %q", name)
			}
			data, err := payload(cb.Data)
			if err != nil {
				return nil, errors.Wrapf(err, "condition %q", name)
			}
			ids[name] = b.AddCondition(labelOr(cb.Label, name), data).ID
			links = appendLink(links, name, graph.SlotOnSuccess, cb.OnSuccess, block.DefRange)
			links = appendLink(links, name, graph.SlotOnFailure, cb.OnFailure, block.DefRange)
		}
	}

	for _, l := range links {
		to, ok := ids[l.to]
		if !ok {
			return nil, errors.Wrapf(graph.NewNotFoundError("node", l.to), "%s: %s of %q", l.rng, l.slot, l.from)
		}
		if _, err := b.Connect(ids[l.from], l.slot, to); err != nil {
			return nil, errors.Wrapf(err, "%s: %s of %q", l.rng, l.slot, l.from)
		}
	}
	return b, nil
}

func appendLink(links []link, from string, slot graph.Slot, to *string, rng hcl.Range) []link {
	if to == nil || *to == "" {
		return links
	}
	return append(links, link{from: from, slot: slot, to: *to, rng: rng})
}

// payload evaluates a data attribute without variables and renders it as JSON
func payload(expr hcl.Expression) (json.RawMessage, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("data must be a known value")
	}
	out, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, errors.Wrap(err, "failed to render data as JSON")
	}
	return out, nil
}

func labelOr(label, name string) string {
	if label != "" {
		return label
	}
	return name
}
