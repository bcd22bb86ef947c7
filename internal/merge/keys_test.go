package merge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/parser"
)

func TestNormalizeKeyComponent(t *testing.T) {
	same := []struct {
		name string
		a, b models.JSONValue
	}{
		{name: "strings are trimmed", a: "  x ", b: "x"},
		{name: "integer and float forms", a: json.Number("1"), b: json.Number("1.0")},
		{name: "exponent form", a: json.Number("1e3"), b: json.Number("1000")},
		{name: "object key order", a: parser.MustParseString(`{"a": 1, "b": 2}`), b: parser.MustParseString(`{"b": 2, "a": 1}`)},
		{name: "go numbers", a: 2, b: json.Number("2")},
	}
	for _, tt := range same {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NormalizeKeyComponent(tt.a, true), NormalizeKeyComponent(tt.b, true))
		})
	}

	different := []struct {
		name string
		a, b models.JSONValue
	}{
		{name: "string and number", a: "1", b: json.Number("1")},
		{name: "bool and string", a: true, b: "true"},
		{name: "bool and number", a: true, b: json.Number("1")},
		{name: "list order matters", a: parser.MustParseString(`[1, 2]`), b: parser.MustParseString(`[2, 1]`)},
		{name: "empty string and null", a: "", b: nil},
	}
	for _, tt := range different {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, NormalizeKeyComponent(tt.a, true), NormalizeKeyComponent(tt.b, true))
		})
	}

	assert.Equal(t, NormalizeKeyComponent(nil, false), NormalizeKeyComponent(nil, true), "absent and null normalize alike")
}

func TestBuildJoinKeyTuple(t *testing.T) {
	a := parser.MustParseString(`{"id": 1, "meta": {"lang": "en"}}`)
	b := parser.MustParseString(`{"meta": {"lang": " en"}, "id": 1.0}`)
	c := parser.MustParseString(`{"id": 1, "meta": {"lang": "fr"}}`)

	assert.Equal(t, BuildJoinKeyTuple(a, []string{"id", "meta.lang"}), BuildJoinKeyTuple(b, []string{"id", "meta.lang"}))
	assert.NotEqual(t, BuildJoinKeyTuple(a, []string{"id", "meta.lang"}), BuildJoinKeyTuple(c, []string{"id", "meta.lang"}))
	assert.NotEqual(t, BuildJoinKeyTuple(a, []string{"id"}), BuildJoinKeyTuple(a, []string{"id", "id"}))
}

func TestBuildJoinKeyTuple_SeparatorInsideValues(t *testing.T) {
	a := models.ObjectOf(models.Field{Key: "x", Value: `a","s:b`}, models.Field{Key: "y", Value: "c"})
	b := models.ObjectOf(models.Field{Key: "x", Value: "a"}, models.Field{Key: "y", Value: `b","s:c`})

	assert.NotEqual(t, BuildJoinKeyTuple(a, []string{"x", "y"}), BuildJoinKeyTuple(b, []string{"x", "y"}))
}

func TestCommonJoinKeys(t *testing.T) {
	tests := []struct {
		name         string
		primary      []string
		secondary    []string
		current      []string
		wantChoices  []string
		wantSelected []string
	}{
		{
			name:         "nothing in common",
			primary:      []string{"a"},
			secondary:    []string{"b"},
			current:      []string{"a"},
			wantChoices:  []string{},
			wantSelected: []string{},
		},
		{
			name:         "default to first common key",
			primary:      []string{"z", "id", "q"},
			secondary:    []string{"q", "z"},
			current:      nil,
			wantChoices:  []string{"q", "z"},
			wantSelected: []string{"q"},
		},
		{
			name:         "retain valid selection",
			primary:      []string{"a", "b", "c"},
			secondary:    []string{"c", "b", "a"},
			current:      []string{"c", "gone", "b"},
			wantChoices:  []string{"a", "b", "c"},
			wantSelected: []string{"c", "b"},
		},
		{
			name:         "stale selection falls back",
			primary:      []string{"a", "a"},
			secondary:    []string{"a"},
			current:      []string{"gone"},
			wantChoices:  []string{"a"},
			wantSelected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choices, selected := CommonJoinKeys(tt.primary, tt.secondary, tt.current)
			assert.Equal(t, tt.wantChoices, choices)
			assert.Equal(t, tt.wantSelected, selected)
		})
	}
}
