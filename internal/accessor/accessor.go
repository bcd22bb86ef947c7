// Package accessor resolves and assigns values by dot path.
package accessor

import (
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
)

// GetValueByPath returns the value addressed by path. The boolean is false
// when nothing was found; a JSON null at the end of a hop also counts as
// nothing found.
//
// At a list, the next segment is broadcast across every element and the
// non-null results are collected. At an object, a missing key is retried by
// joining the following segments with literal dots, shortest first, which
// covers keys such as "gpt-3.5-turbo" addressed without escaping.
func GetValueByPath(value models.JSONValue, path string) (result models.JSONValue, found bool) {
	defer func() {
		if r := recover(); r != nil {
			result, found = nil, false
		}
	}()

	keys := pathutil.SplitPath(path)
	val := value

	for i := 0; i < len(keys); {
		key := keys[i]

		switch models.KindOf(val) {
		case models.KindObject:
			obj := val.(*models.JSONObject)
			if v, ok := obj.Get(key); ok {
				val = v
				i++
				break
			}
			next, consumed, ok := rejoinLookup(obj, keys[i:])
			if !ok {
				return nil, false
			}
			val = next
			i += consumed

		case models.KindArray:
			collected := collectValues(val, key)
			if len(collected) == 0 {
				return nil, false
			}
			val = collected
			i++

		default:
			return nil, false
		}

		if val == nil {
			return nil, false
		}
	}

	if val == nil {
		return nil, false
	}
	return val, true
}

// rejoinLookup tries keys[0]+"."+keys[1], then keys[0]+"."+keys[1]+"."+keys[2],
// and so on. The first match wins.
func rejoinLookup(obj *models.JSONObject, keys []string) (models.JSONValue, int, bool) {
	candidate := keys[0]
	for j := 1; j < len(keys); j++ {
		candidate += "." + keys[j]
		if v, ok := obj.Get(candidate); ok {
			return v, j + 1, true
		}
	}
	return nil, 0, false
}

// collectValues looks key up in every object reachable through nested lists.
func collectValues(container models.JSONValue, key string) models.JSONArray {
	var results models.JSONArray
	switch c := container.(type) {
	case *models.JSONObject:
		if v, ok := c.Get(key); ok && v != nil {
			results = append(results, v)
		}
	case models.JSONArray:
		for _, item := range c {
			results = append(results, collectValues(item, key)...)
		}
	}
	return results
}

// SetValueByPath assigns value at path inside container and returns the
// updated container. The root path, or a container that is not an object,
// yields value itself. Missing or non-object intermediate nodes are
// replaced by fresh objects.
func SetValueByPath(container models.JSONValue, path string, value models.JSONValue) models.JSONValue {
	if pathutil.IsRoot(path) {
		return value
	}
	current, ok := container.(*models.JSONObject)
	if !ok || current == nil {
		return value
	}

	parts := pathutil.SplitPath(path)
	if len(parts) == 0 {
		return value
	}

	for _, part := range parts[:len(parts)-1] {
		next, _ := current.Get(part)
		nextObj, isObj := next.(*models.JSONObject)
		if !isObj || nextObj == nil {
			nextObj = models.NewObject()
			current.Set(part, nextObj)
		}
		current = nextObj
	}
	current.Set(parts[len(parts)-1], value)
	return container
}
