// Package schema discovers the implicit schema of a JSON document: every
// addressable field path, and every path that holds a list and can serve as
// an iteration root.
package schema

import (
	"sort"

	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
)

// KeySet is a set of escaped dot paths.
type KeySet map[string]struct{}

// Add inserts path.
func (ks KeySet) Add(path string) {
	ks[path] = struct{}{}
}

// Union adds every path of other.
func (ks KeySet) Union(other KeySet) {
	for k := range other {
		ks[k] = struct{}{}
	}
}

// Has reports whether path is in the set.
func (ks KeySet) Has(path string) bool {
	_, ok := ks[path]
	return ok
}

// Sorted returns the paths in lexicographic order.
func (ks KeySet) Sorted() []string {
	out := make([]string, 0, len(ks))
	for k := range ks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ExtractAllKeys returns every field path found anywhere in v. List indices
// are not part of the paths: list elements are walked with the list's own
// path, so heterogeneous objects in a list contribute the union of their
// keys, and a list of primitives contributes the list's path.
func ExtractAllKeys(v models.JSONValue) KeySet {
	keys := KeySet{}
	extractAllKeys(v, "", keys)
	return keys
}

func extractAllKeys(v models.JSONValue, parent string, keys KeySet) {
	switch models.KindOf(v) {
	case models.KindObject:
		obj := v.(*models.JSONObject)
		for _, k := range obj.Keys() {
			child, _ := obj.Get(k)
			current := pathutil.Append(parent, k)
			switch models.KindOf(child) {
			case models.KindObject, models.KindArray:
				extractAllKeys(child, current, keys)
			default:
				keys.Add(current)
			}
		}

	case models.KindArray:
		for _, item := range v.(models.JSONArray) {
			switch models.KindOf(item) {
			case models.KindObject, models.KindArray:
				extractAllKeys(item, parent, keys)
			default:
				if parent != "" {
					keys.Add(parent)
				}
			}
		}

	default:
		if parent != "" {
			keys.Add(parent)
		}
	}
}

// FindListPaths returns the sorted, de-duplicated paths of every list-valued
// field. For a list of objects only the first element is sampled for nested
// lists. A document that is itself a list contributes pathutil.RootSentinel.
func FindListPaths(v models.JSONValue) []string {
	found := KeySet{}
	findListPaths(v, "", found)
	return found.Sorted()
}

func findListPaths(v models.JSONValue, parent string, found KeySet) {
	switch models.KindOf(v) {
	case models.KindObject:
		obj := v.(*models.JSONObject)
		for _, k := range obj.Keys() {
			child, _ := obj.Get(k)
			current := pathutil.Append(parent, k)
			switch models.KindOf(child) {
			case models.KindArray:
				found.Add(current)
				list := child.(models.JSONArray)
				if len(list) > 0 && models.KindOf(list[0]) == models.KindObject {
					findListPaths(list[0], current, found)
				}
			case models.KindObject:
				findListPaths(child, current, found)
			}
		}

	case models.KindArray:
		if parent != "" {
			return
		}
		found.Add(pathutil.RootSentinel)
		list := v.(models.JSONArray)
		if len(list) > 0 && models.KindOf(list[0]) == models.KindObject {
			findListPaths(list[0], "", found)
		}
	}
}

// RootChoices returns the root paths to offer for v and the default one.
// Without any list paths only the whole document is offered.
func RootChoices(v models.JSONValue) ([]string, string) {
	choices := FindListPaths(v)
	if len(choices) == 0 {
		return []string{pathutil.RootSentinel}, pathutil.RootSentinel
	}
	for _, c := range choices {
		if c == pathutil.RootSentinel {
			return choices, pathutil.RootSentinel
		}
	}
	return choices, choices[0]
}
