package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcncl/jsonshaper/internal/accessor"
	"github.com/mcncl/jsonshaper/internal/parser"
	"github.com/mcncl/jsonshaper/internal/pathutil"
)

func TestExtractAllKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "flat object",
			input:    `{"name": "x", "age": 3}`,
			expected: []string{"age", "name"},
		},
		{
			name:     "nested object",
			input:    `{"user": {"name": "x", "address": {"city": "y"}}}`,
			expected: []string{"user.address.city", "user.name"},
		},
		{
			name:     "list of heterogeneous objects contributes the union",
			input:    `[{"a": 1}, {"b": 2}, {"a": 3, "c": {"d": 4}}]`,
			expected: []string{"a", "b", "c.d"},
		},
		{
			name:     "list of primitives contributes the list path",
			input:    `{"tags": ["go", "json"], "id": 1}`,
			expected: []string{"id", "tags"},
		},
		{
			name:     "nested list of objects uses the list path as parent",
			input:    `{"items": [{"sku": "a"}, {"qty": 2}]}`,
			expected: []string{"items.qty", "items.sku"},
		},
		{
			name:     "list of lists",
			input:    `[[{"q": 1}], [{"q": 2}, {"r": 3}]]`,
			expected: []string{"q", "r"},
		},
		{
			name:     "dotted key is escaped",
			input:    `{"responses": {"gpt-3.5-turbo": {"response": "x"}}}`,
			expected: []string{`responses.gpt-3\.5-turbo.response`},
		},
		{
			name:     "null leaf is a key",
			input:    `{"a": null}`,
			expected: []string{"a"},
		},
		{
			name:     "empty object field contributes nothing",
			input:    `{"a": {}, "b": []}`,
			expected: []string{},
		},
		{
			name:     "top-level scalar has no keys",
			input:    `42`,
			expected: []string{},
		},
		{
			name:     "top-level list of primitives has no keys",
			input:    `[1, 2, 3]`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parser.MustParseString(tt.input)
			assert.Equal(t, tt.expected, ExtractAllKeys(doc).Sorted())
		})
	}
}

func TestExtractAllKeys_DottedKeyAlongsideNestedPath(t *testing.T) {
	doc := parser.MustParseString(`{"a": {"b": 1}, "a.b": 2}`)
	keys := ExtractAllKeys(doc).Sorted()

	assert.Equal(t, []string{"a.b", `a\.b`}, keys)
	assert.Equal(t, []string{"a", "b"}, pathutil.SplitPath(keys[0]))
	assert.Equal(t, []string{"a.b"}, pathutil.SplitPath(keys[1]))

	nested, found := accessor.GetValueByPath(doc, keys[0])
	assert.True(t, found)
	assert.Equal(t, json.Number("1"), nested)

	dotted, found := accessor.GetValueByPath(doc, keys[1])
	assert.True(t, found)
	assert.Equal(t, json.Number("2"), dotted)
}

func TestExtractAllKeys_NilInput(t *testing.T) {
	assert.Empty(t, ExtractAllKeys(nil))
}

func TestFindListPaths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "root list of objects",
			input:    `[{"id": 1, "tags": ["a"]}, {"id": 2}]`,
			expected: []string{"(root)", "tags"},
		},
		{
			name:     "envelope object",
			input:    `{"meta": {"page": 1}, "data": {"items": [{"id": 1, "children": [{"x": 1}]}]}}`,
			expected: []string{"data.items", "data.items.children"},
		},
		{
			name:     "only the first element is sampled",
			input:    `{"items": [{"a": 1}, {"nested": [1]}]}`,
			expected: []string{"items"},
		},
		{
			name:     "list of primitives is still a list path",
			input:    `{"tags": ["x", "y"]}`,
			expected: []string{"tags"},
		},
		{
			name:     "root list of lists",
			input:    `[[{"q": 1}]]`,
			expected: []string{"(root)"},
		},
		{
			name:     "no lists",
			input:    `{"a": {"b": 1}}`,
			expected: []string{},
		},
		{
			name:     "dotted key is escaped",
			input:    `{"v1.0": {"rows": []}}`,
			expected: []string{`v1\.0.rows`},
		},
		{
			name:     "scalar document",
			input:    `"just a string"`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parser.MustParseString(tt.input)
			assert.Equal(t, tt.expected, FindListPaths(doc))
		})
	}
}

func TestRootChoices(t *testing.T) {
	choices, def := RootChoices(parser.MustParseString(`{"a": 1}`))
	assert.Equal(t, []string{"(root)"}, choices)
	assert.Equal(t, "(root)", def)

	choices, def = RootChoices(parser.MustParseString(`[{"tags": [1]}]`))
	assert.Equal(t, []string{"(root)", "tags"}, choices)
	assert.Equal(t, "(root)", def)

	choices, def = RootChoices(parser.MustParseString(`{"rows": [{"x": 1}], "alt": []}`))
	assert.Equal(t, []string{"alt", "rows"}, choices)
	assert.Equal(t, "alt", def)
}
