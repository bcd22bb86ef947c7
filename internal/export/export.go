// Package export writes flattened rows and merged documents to disk.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mcncl/jsonshaper/internal/flatten"
	"github.com/mcncl/jsonshaper/internal/models"
)

// WriteCSV writes a header line built from headers, then one line per row.
// Cells are looked up by header name; missing and null cells are empty.
// The header is written even when rows is empty.
func WriteCSV(w io.Writer, headers []string, rows []flatten.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(headers))
	for i, row := range rows {
		for j, h := range headers {
			v, _ := row.Get(h)
			record[j] = flatten.ScalarString(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as JSON with the given indent, followed by a newline.
// Object key order is kept and HTML characters are not escaped.
func WriteJSON(w io.Writer, v models.JSONValue, indent string) error {
	var (
		b   []byte
		err error
	)
	if indent == "" {
		b, err = models.Marshal(v)
	} else {
		b, err = models.MarshalIndent(v, indent)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// RowsValue turns rows into a JSON list value.
func RowsValue(rows []flatten.Row) models.JSONArray {
	out := make(models.JSONArray, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// ResolveOutputPath joins dir with name, falling back to fallback when name
// is blank, and appends ext unless the name already ends with it in any case.
func ResolveOutputPath(dir, name, ext, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if ext != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		name += ext
	}
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// Extension returns the file extension for an export format.
func Extension(format string) string {
	switch format {
	case "sqlite":
		return ".db"
	case "":
		return ""
	default:
		return "." + format
	}
}
