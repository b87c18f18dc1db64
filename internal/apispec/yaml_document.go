// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlDocument keeps the parsed node tree so mapping order, comments and
// scalar styles survive a round trip.
type yamlDocument struct {
	root *yaml.Node
}

func decodeYAML(data []byte) (*yamlDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &Error{Op: "decode", Kind: ErrMalformedInput, Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, schemaErrorf("", "document is empty")
	}

	top := deref(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, schemaErrorf("", "document root is %s, want object", yamlKind(top))
	}
	paths := mappingValue(top, "paths")
	if paths == nil {
		return nil, schemaErrorf("", "missing paths")
	}
	if paths.Kind != yaml.MappingNode {
		return nil, schemaErrorf("", "paths is %s, want object", yamlKind(paths))
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		if item := deref(paths.Content[i+1]); item.Kind != yaml.MappingNode {
			return nil, schemaErrorf(paths.Content[i].Value, "path item is %s, want object", yamlKind(item))
		}
	}

	return &yamlDocument{root: &root}, nil
}

func (d *yamlDocument) Format() Format { return FormatYAML }

func (d *yamlDocument) top() *yaml.Node { return deref(d.root.Content[0]) }

func (d *yamlDocument) paths() *yaml.Node { return mappingValue(d.top(), "paths") }

func (d *yamlDocument) Paths() ([]PathItem, error) {
	paths := d.paths()
	items := make([]PathItem, 0, len(paths.Content)/2)
	for i := 0; i+1 < len(paths.Content); i += 2 {
		value := deref(paths.Content[i+1])
		item := PathItem{Path: paths.Content[i].Value, HasTags: yamlDeclaresTags(value)}
		for j := 0; j+1 < len(value.Content); j += 2 {
			if op := deref(value.Content[j+1]); op.Kind == yaml.MappingNode && yamlDeclaresTags(op) {
				item.Operations = append(item.Operations, value.Content[j].Value)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (d *yamlDocument) Apply(res Result) error {
	paths := d.paths()
	if n := len(paths.Content) / 2; n != len(res.Assignments) {
		return fmt.Errorf("tag plan has %d paths, document has %d", len(res.Assignments), n)
	}

	for i, a := range res.Assignments {
		key := paths.Content[2*i]
		if key.Value != a.Path {
			return fmt.Errorf("tag plan does not cover path %q", key.Value)
		}
		value := unshare(paths, 2*i+1)
		if a.PathTags {
			retagYAML(value, a.Tag)
		}
		for _, name := range a.Operations {
			op := unshareValue(value, name)
			if op == nil || op.Kind != yaml.MappingNode {
				return fmt.Errorf("path %q: operation %q not found", a.Path, name)
			}
			retagYAML(op, a.Tag)
		}
	}

	var catalog yaml.Node
	if err := catalog.Encode(res.Catalog); err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	setMappingValue(d.top(), "tags", &catalog)
	return nil
}

func (d *yamlDocument) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// retagYAML replaces the tags sequence of m with a single tag, keeping the
// original flow or block style.
func retagYAML(m *yaml.Node, tag string) {
	seq := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Tag:     "!!seq",
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag}},
	}
	if old := mappingValue(m, "tags"); old != nil {
		seq.Style = old.Style & yaml.FlowStyle
	}
	setMappingValue(m, "tags", seq)
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// unshare replaces an alias at parent.Content[i] with a private copy of
// the anchored node so retagging one path cannot change another.
func unshare(parent *yaml.Node, i int) *yaml.Node {
	n := parent.Content[i]
	if n.Kind != yaml.AliasNode {
		return n
	}
	c := cloneNode(deref(n))
	parent.Content[i] = c
	return c
}

func unshareValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return unshare(m, i+1)
		}
	}
	return nil
}

// cloneNode deep-copies n without anchors. Aliases inside the copy keep
// pointing at their original anchors.
func cloneNode(n *yaml.Node) *yaml.Node {
	c := *n
	c.Anchor = ""
	if n.Kind == yaml.AliasNode {
		return &c
	}
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = cloneNode(child)
	}
	return &c
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// yamlDeclaresTags applies the same truthiness as jsonDeclaresTags.
func yamlDeclaresTags(m *yaml.Node) bool {
	t := mappingValue(m, "tags")
	if t == nil {
		return false
	}
	if t.Kind != yaml.ScalarNode {
		return true
	}
	var v any
	if err := t.Decode(&v); err != nil {
		return true
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	}
	return true
}

func yamlKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return "null"
		case "!!bool":
			return "boolean"
		case "!!int", "!!float":
			return "number"
		}
		return "string"
	}
	return "unknown"
}
