package flatten

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonshaper/internal/pathutil"
)

// FieldMappingEntry maps one selected input path to an output column name.
type FieldMappingEntry struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// FieldMapping is an ordered selection of input paths with their output
// names. Column order follows the selection order.
type FieldMapping []FieldMappingEntry

// NewFieldMapping selects paths, naming each output after the final
// unescaped segment of its path.
func NewFieldMapping(selected []string) FieldMapping {
	m := make(FieldMapping, 0, len(selected))
	for _, path := range selected {
		m = append(m, FieldMappingEntry{Input: path, Output: DefaultOutputName(path)})
	}
	return m
}

// IdentityMapping selects paths and keeps each path as its own output name.
// Re-extracting the keys of the flattened rows gives back the selection only
// for top-level fields; a nested path comes back as one escaped segment.
func IdentityMapping(selected []string) FieldMapping {
	m := make(FieldMapping, 0, len(selected))
	for _, path := range selected {
		m = append(m, FieldMappingEntry{Input: path, Output: path})
	}
	return m
}

// DefaultOutputName is the final unescaped segment of path, or path itself
// when it has no segments.
func DefaultOutputName(path string) string {
	return pathutil.LastSegment(path)
}

// Fields returns the selected input paths in order.
func (m FieldMapping) Fields() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Input
	}
	return out
}

// Headers returns the output names in selection order.
func (m FieldMapping) Headers() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = m.OutputName(e.Input)
	}
	return out
}

// OutputName returns the output name for path. When a path was selected
// twice the later entry wins; an unknown path maps to itself.
func (m FieldMapping) OutputName(path string) string {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Input == path {
			return m[i].Output
		}
	}
	return path
}

// Rename returns a copy of m with path's output name replaced.
func (m FieldMapping) Rename(path, name string) FieldMapping {
	out := make(FieldMapping, len(m))
	copy(out, m)
	for i := range out {
		if out[i].Input == path {
			out[i].Output = name
		}
	}
	return out
}

// WithOverrides returns a copy of m where every path found in overrides
// takes the override as its output name.
func (m FieldMapping) WithOverrides(overrides map[string]string) FieldMapping {
	out := make(FieldMapping, len(m))
	copy(out, m)
	for i := range out {
		if name, ok := overrides[out[i].Input]; ok && name != "" {
			out[i].Output = name
		}
	}
	return out
}

// WithStyle returns a copy of m with every output name restyled.
func (m FieldMapping) WithStyle(style NameStyle) FieldMapping {
	out := make(FieldMapping, len(m))
	for i, e := range m {
		out[i] = FieldMappingEntry{Input: e.Input, Output: ApplyStyle(e.Output, style)}
	}
	return out
}

// ParseFieldSpecs builds a mapping from "path" or "path=Output Name" specs.
// Specs without an explicit name get the default output name restyled with
// style.
func ParseFieldSpecs(specs []string, style NameStyle) (FieldMapping, error) {
	m := make(FieldMapping, 0, len(specs))
	for _, spec := range specs {
		path, name, explicit := strings.Cut(spec, "=")
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("field spec %q has an empty path", spec)
		}
		if explicit {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("field spec %q has an empty output name", spec)
			}
		} else {
			name = ApplyStyle(DefaultOutputName(path), style)
		}
		m = append(m, FieldMappingEntry{Input: path, Output: name})
	}
	return m, nil
}

// ToggleSelection returns a new selection with path added (selected) or
// removed. The input slice is never modified and order is preserved.
func ToggleSelection(current []string, path string, selected bool) []string {
	out := make([]string, 0, len(current)+1)
	present := false
	for _, p := range current {
		if p == path {
			present = true
			if !selected {
				continue
			}
		}
		out = append(out, p)
	}
	if selected && !present {
		out = append(out, path)
	}
	return out
}
