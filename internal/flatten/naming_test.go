package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStyle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		style    NameStyle
		expected string
	}{
		{name: "none", input: "firstName", style: StyleNone, expected: "firstName"},
		{name: "snake", input: "firstName", style: StyleSnake, expected: "first_name"},
		{name: "camel", input: "first_name", style: StyleCamel, expected: "FirstName"},
		{name: "lower camel", input: "first_name", style: StyleLowerCamel, expected: "firstName"},
		{name: "kebab", input: "firstName", style: StyleKebab, expected: "first-name"},
		{name: "title from snake", input: "created_at", style: StyleTitle, expected: "Created At"},
		{name: "title from camel", input: "createdAt", style: StyleTitle, expected: "Created At"},
		{name: "unknown style", input: "x_y", style: NameStyle("shout"), expected: "x_y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyStyle(tt.input, tt.style))
		})
	}
}

func TestParseNameStyle(t *testing.T) {
	style, err := ParseNameStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleNone, style)

	for _, s := range NameStyles {
		got, err := ParseNameStyle(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err = ParseNameStyle("SCREAMING")
	assert.Error(t, err)
}
