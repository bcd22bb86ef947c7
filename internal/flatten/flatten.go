// Package flatten projects selected field paths out of each record into
// flat output rows for preview and export.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/records"
)

// DefaultListSeparator joins lists of scalars into a single cell.
const DefaultListSeparator = ", "

// Row is one flattened output row keyed by output name in selection order.
type Row = *models.JSONObject

// Options holds flattening settings.
type Options struct {
	ListSeparator string
}

// Option configures flattening.
type Option func(*Options)

// WithListSeparator sets the separator used for lists of scalars.
func WithListSeparator(sep string) Option {
	return func(o *Options) {
		o.ListSeparator = sep
	}
}

func newOptions(opts []Option) Options {
	o := Options{ListSeparator: DefaultListSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FlattenForExport returns one row per record under root. Groups are
// concatenated in order.
func FlattenForExport(doc models.JSONValue, mapping FieldMapping, root string, opts ...Option) []Row {
	return flatten(doc, mapping, root, -1, newOptions(opts))
}

// FlattenForPreview is FlattenForExport capped at limit rows. A limit
// below one is treated as one.
func FlattenForPreview(doc models.JSONValue, mapping FieldMapping, root string, limit int, opts ...Option) []Row {
	if limit < 1 {
		limit = 1
	}
	return flatten(doc, mapping, root, limit, newOptions(opts))
}

func flatten(doc models.JSONValue, mapping FieldMapping, root string, limit int, o Options) []Row {
	rows := []Row{}
	if doc == nil || len(mapping) == 0 {
		return rows
	}

	groups, _ := records.ResolveGroupsForMerge(doc, root)
	fields := mapping.Fields()
	for _, record := range records.Flatten(groups) {
		row := models.NewObject()
		for _, field := range fields {
			v, found := records.ResolveFieldValue(doc, record, field, root)
			row.Set(mapping.OutputName(field), RenderValue(v, found, o.ListSeparator))
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows
}

// RenderValue turns a resolved value into a cell. Absent values become
// null, scalars pass through, lists of scalars are joined with sep and
// anything else becomes compact JSON text.
func RenderValue(v models.JSONValue, found bool, sep string) models.JSONValue {
	if !found {
		return nil
	}
	switch models.KindOf(v) {
	case models.KindArray:
		list := v.(models.JSONArray)
		if allScalars(list) {
			parts := make([]string, len(list))
			for i, item := range list {
				parts[i] = ScalarString(item)
			}
			return strings.Join(parts, sep)
		}
		return compactJSON(v)
	case models.KindObject, models.KindUnknown:
		return compactJSON(v)
	default:
		return v
	}
}

func allScalars(list models.JSONArray) bool {
	for _, item := range list {
		if !models.IsScalar(item) {
			return false
		}
	}
	return true
}

func compactJSON(v models.JSONValue) string {
	b, err := models.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// ScalarString renders a scalar the way it appears in a text cell: null is
// empty, numbers keep their JSON text and bools are true or false.
func ScalarString(v models.JSONValue) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		if models.KindOf(v) == models.KindNull {
			return ""
		}
		if !models.IsScalar(v) {
			return compactJSON(v)
		}
		return fmt.Sprint(v)
	}
}
