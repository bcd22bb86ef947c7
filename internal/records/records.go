// Package records turns a document and a root path into the records that
// export and merge iterate over.
package records

import (
	"strings"

	"github.com/mcncl/jsonshaper/internal/accessor"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// DefaultSampleSize is the number of records ExtractRecordKeys inspects.
const DefaultSampleSize = 50

// RecordGroup is a run of object records that share a nesting context.
type RecordGroup []*models.JSONObject

// ResolveItemsByRoot returns the items found at root. The whole-document
// root yields the document itself when it is a list, else a one-item list.
// Other roots are resolved by path; a missing or null value yields nothing.
func ResolveItemsByRoot(doc models.JSONValue, root string) []models.JSONValue {
	if doc == nil {
		return nil
	}

	var target models.JSONValue
	if pathutil.IsRoot(root) {
		target = doc
	} else {
		v, found := accessor.GetValueByPath(doc, root)
		if !found {
			return nil
		}
		target = v
	}

	if list, ok := target.(models.JSONArray); ok {
		return list
	}
	if target == nil {
		return nil
	}
	return []models.JSONValue{target}
}

// ResolveGroupsForMerge splits the items at root into record groups.
//
//   - a list of objects gives one group holding every object (grouped=false)
//   - a list of lists of objects gives one group per inner list (grouped=true)
//   - a single object gives one group of one record
//
// Non-object members of inner lists are dropped, as are items that are
// neither lists nor objects.
func ResolveGroupsForMerge(doc models.JSONValue, root string) ([]RecordGroup, bool) {
	items := ResolveItemsByRoot(doc, root)
	grouped := false
	var groups []RecordGroup

	for _, entry := range items {
		switch models.KindOf(entry) {
		case models.KindArray:
			grouped = true
			group := RecordGroup{}
			for _, member := range entry.(models.JSONArray) {
				if obj, ok := member.(*models.JSONObject); ok && obj != nil {
					group = append(group, obj)
				}
			}
			groups = append(groups, group)
		case models.KindObject:
			groups = append(groups, RecordGroup{entry.(*models.JSONObject)})
		}
	}

	// A plain list of objects produced one group per object above; collapse
	// them so the flat list shape survives.
	if !grouped && len(groups) > 0 {
		flat := make(RecordGroup, 0, len(groups))
		for _, g := range groups {
			flat = append(flat, g...)
		}
		groups = []RecordGroup{flat}
	}

	return groups, grouped
}

// Flatten concatenates groups into a single record stream.
func Flatten(groups []RecordGroup) []*models.JSONObject {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]*models.JSONObject, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ResolveFieldValue resolves field for one record. Under the whole-document
// root the field is relative to the record. Otherwise a field equal to root
// is the record itself, a field under root is resolved against the record,
// and any other field is resolved against the full document.
func ResolveFieldValue(doc models.JSONValue, record models.JSONValue, field, root string) (models.JSONValue, bool) {
	if pathutil.IsRoot(root) {
		return accessor.GetValueByPath(record, field)
	}
	if field == root {
		return record, record != nil
	}
	if rel, ok := strings.CutPrefix(field, root+"."); ok {
		return accessor.GetValueByPath(record, rel)
	}
	return accessor.GetValueByPath(doc, field)
}

// ExtractRecordKeys returns the sorted union of field paths over the first
// sampleSize records under root. The paths are relative to the records.
func ExtractRecordKeys(doc models.JSONValue, root string, sampleSize int) []string {
	groups, _ := ResolveGroupsForMerge(doc, root)
	keys := schema.KeySet{}
	remaining := sampleSize
	if remaining < 0 {
		remaining = 0
	}
	for _, group := range groups {
		for _, record := range group {
			keys.Union(schema.ExtractAllKeys(record))
			remaining--
			if remaining <= 0 {
				return keys.Sorted()
			}
		}
	}
	return keys.Sorted()
}

// Count summarizes how many records and groups a root yields.
type Count struct {
	Records int
	Groups  int
	Grouped bool
}

// CountRecords counts the records under root.
func CountRecords(doc models.JSONValue, root string) Count {
	groups, grouped := ResolveGroupsForMerge(doc, root)
	c := Count{Groups: len(groups), Grouped: grouped}
	for _, g := range groups {
		c.Records += len(g)
	}
	return c
}
