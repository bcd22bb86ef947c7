package flatten

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameStyle controls how default output names are rewritten.
type NameStyle string

const (
	StyleNone       NameStyle = "none"
	StyleSnake      NameStyle = "snake"
	StyleCamel      NameStyle = "camel"
	StyleLowerCamel NameStyle = "lower_camel"
	StyleKebab      NameStyle = "kebab"
	StyleTitle      NameStyle = "title"
)

// NameStyles lists every supported style.
var NameStyles = []NameStyle{StyleNone, StyleSnake, StyleCamel, StyleLowerCamel, StyleKebab, StyleTitle}

// ParseNameStyle validates s. The empty string means StyleNone.
func ParseNameStyle(s string) (NameStyle, error) {
	if s == "" {
		return StyleNone, nil
	}
	for _, style := range NameStyles {
		if string(style) == s {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown naming style %q", s)
}

// ApplyStyle rewrites name in the given style. Unknown styles and
// StyleNone leave the name untouched.
func ApplyStyle(name string, style NameStyle) string {
	switch style {
	case StyleSnake:
		return strcase.ToSnake(name)
	case StyleCamel:
		return strcase.ToCamel(name)
	case StyleLowerCamel:
		return strcase.ToLowerCamel(name)
	case StyleKebab:
		return strcase.ToKebab(name)
	case StyleTitle:
		words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(strcase.ToDelimited(name, ' ')))
		return cases.Title(language.English).String(strings.Join(words, " "))
	default:
		return name
	}
}
