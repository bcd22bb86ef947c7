package schema

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
)

// SelfKey is the reserved key under which a branch that is also directly
// selectable carries its own path when the tree is serialized.
const SelfKey = "__self__"

// PathTree is a nested view of a flat set of paths, keyed by unescaped segment.
type PathTree map[string]*PathNode

// PathNode is either a leaf (Children == nil) holding its full path, or a
// branch. A branch has a non-empty Path when the same path is also a value
// in its own right, e.g. both "a" and "a.b" were discovered.
type PathNode struct {
	Path     string
	Children PathTree
}

// IsLeaf reports whether n has no children.
func (n *PathNode) IsLeaf() bool {
	return n.Children == nil
}

// Selectable reports whether n maps to a path that can be selected.
func (n *PathNode) Selectable() bool {
	return n.Path != ""
}

// BuildTree converts keys into a PathTree. A leaf that later turns out to
// have children becomes a branch and keeps its path in the self slot.
func BuildTree(keys []string) PathTree {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	tree := PathTree{}
	for _, key := range sorted {
		parts := pathutil.SplitPath(key)
		if len(parts) == 0 {
			continue
		}

		current := tree
		for _, part := range parts[:len(parts)-1] {
			node, ok := current[part]
			if !ok {
				node = &PathNode{Children: PathTree{}}
				current[part] = node
			}
			if node.Children == nil {
				node.Children = PathTree{}
			}
			current = node.Children
		}

		last := parts[len(parts)-1]
		if node, ok := current[last]; ok {
			if !node.IsLeaf() {
				node.Path = key
			}
			continue
		}
		current[last] = &PathNode{Path: key}
	}
	return tree
}

// Keys returns the segment names of t in sorted order.
func (t PathTree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Paths returns every selectable path in the tree, depth first.
func (t PathTree) Paths() []string {
	var out []string
	for _, k := range t.Keys() {
		node := t[k]
		if node.Selectable() {
			out = append(out, node.Path)
		}
		if !node.IsLeaf() {
			out = append(out, node.Children.Paths()...)
		}
	}
	return out
}

// toValue converts the tree to a JSON value: leaves become their path
// string, branches become objects with the self slot first.
func (t PathTree) toValue() *models.JSONObject {
	obj := models.NewObject()
	for _, k := range t.Keys() {
		node := t[k]
		if node.IsLeaf() {
			obj.Set(k, node.Path)
			continue
		}
		child := models.NewObject()
		if node.Selectable() {
			child.Set(SelfKey, node.Path)
		}
		inner := node.Children.toValue()
		for _, ck := range inner.Keys() {
			v, _ := inner.Get(ck)
			child.Set(ck, v)
		}
		obj.Set(k, child)
	}
	return obj
}

// MarshalJSON renders the tree with sorted keys.
func (t PathTree) MarshalJSON() ([]byte, error) {
	return t.toValue().MarshalJSON()
}

// MarshalYAML renders the tree as an ordered YAML mapping.
func (t PathTree) MarshalYAML() (interface{}, error) {
	return t.yamlNode(), nil
}

func (t PathTree) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range t.Keys() {
		child := t[k]
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		if child.IsLeaf() {
			node.Content = append(node.Content, keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: child.Path})
			continue
		}
		inner := child.Children.yamlNode()
		if child.Selectable() {
			self := []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: SelfKey},
				{Kind: yaml.ScalarNode, Value: child.Path},
			}
			inner.Content = append(self, inner.Content...)
		}
		node.Content = append(node.Content, keyNode, inner)
	}
	return node
}

// RenderText writes an indented outline of the tree. Branches end in "/";
// the second column is the path to select, if any.
func RenderText(w io.Writer, tree PathTree) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	renderText(tw, tree, 0)
	return tw.Flush()
}

func renderText(w io.Writer, tree PathTree, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, k := range tree.Keys() {
		node := tree[k]
		name := k
		if !node.IsLeaf() {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s\t%s\n", indent, name, node.Path)
		if !node.IsLeaf() {
			renderText(w, node.Children, depth+1)
		}
	}
}
