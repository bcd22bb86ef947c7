package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldMapping(t *testing.T) {
	m := NewFieldMapping([]string{"user.name", `responses.gpt-3\.5-turbo`, "id"})

	assert.Equal(t, []string{"user.name", `responses.gpt-3\.5-turbo`, "id"}, m.Fields())
	assert.Equal(t, []string{"name", "gpt-3.5-turbo", "id"}, m.Headers())
	assert.Equal(t, "name", m.OutputName("user.name"))
	assert.Equal(t, "unknown.path", m.OutputName("unknown.path"))
}

func TestIdentityMapping(t *testing.T) {
	m := IdentityMapping([]string{"a.b", "c"})
	assert.Equal(t, []string{"a.b", "c"}, m.Headers())
}

func TestFieldMapping_Rename(t *testing.T) {
	original := NewFieldMapping([]string{"a.b", "c"})
	renamed := original.Rename("a.b", "Column B")

	assert.Equal(t, []string{"Column B", "c"}, renamed.Headers())
	assert.Equal(t, []string{"b", "c"}, original.Headers())
}

func TestFieldMapping_DuplicateSelectionLaterWins(t *testing.T) {
	m := FieldMapping{
		{Input: "a", Output: "first"},
		{Input: "a", Output: "second"},
	}
	assert.Equal(t, "second", m.OutputName("a"))
	assert.Equal(t, []string{"second", "second"}, m.Headers())
}

func TestFieldMapping_WithOverrides(t *testing.T) {
	m := NewFieldMapping([]string{"user.first_name", "user.id"}).
		WithStyle(StyleCamel).
		WithOverrides(map[string]string{"user.id": "UserID", "other": "x", "user.first_name": ""})

	assert.Equal(t, []string{"FirstName", "UserID"}, m.Headers())
}

func TestParseFieldSpecs(t *testing.T) {
	m, err := ParseFieldSpecs([]string{"user.first_name", "user.id = Identifier"}, StyleKebab)
	require.NoError(t, err)
	assert.Equal(t, FieldMapping{
		{Input: "user.first_name", Output: "first-name"},
		{Input: "user.id", Output: "Identifier"},
	}, m)

	_, err = ParseFieldSpecs([]string{"=name"}, StyleNone)
	assert.Error(t, err)

	_, err = ParseFieldSpecs([]string{"a="}, StyleNone)
	assert.Error(t, err)
}

func TestToggleSelection(t *testing.T) {
	tests := []struct {
		name     string
		current  []string
		path     string
		selected bool
		expected []string
	}{
		{name: "add to empty", current: nil, path: "a", selected: true, expected: []string{"a"}},
		{name: "add appends", current: []string{"a"}, path: "b", selected: true, expected: []string{"a", "b"}},
		{name: "add existing is a no-op", current: []string{"a", "b"}, path: "a", selected: true, expected: []string{"a", "b"}},
		{name: "remove keeps order", current: []string{"a", "b", "c"}, path: "b", selected: false, expected: []string{"a", "c"}},
		{name: "remove missing is a no-op", current: []string{"a"}, path: "z", selected: false, expected: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToggleSelection(tt.current, tt.path, tt.selected))
		})
	}
}

func TestToggleSelection_DoesNotMutateInput(t *testing.T) {
	current := []string{"a", "b"}
	_ = ToggleSelection(current, "a", false)
	_ = ToggleSelection(current, "c", true)
	assert.Equal(t, []string{"a", "b"}, current)
}
