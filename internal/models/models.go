package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// JSONValue is a generic type to represent any JSON value.
// Parsed documents only ever contain nil, bool, json.Number, string,
// JSONArray and *JSONObject. Use KindOf to switch over them.
type JSONValue interface{}

// Kind is the closed set of shapes a JSONValue can take.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindUnknown
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf classifies v. Go numeric types are accepted as numbers so values
// built by hand in tests behave like parsed ones.
func KindOf(v JSONValue) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int64, int32:
		return KindNumber
	case string:
		return KindString
	case JSONArray:
		return KindArray
	case *JSONObject:
		if t == nil {
			return KindNull
		}
		return KindObject
	default:
		return KindUnknown
	}
}

// IsScalar reports whether v is null, a bool, a number or a string.
func IsScalar(v JSONValue) bool {
	switch KindOf(v) {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject is a JSON object that remembers key insertion order.
// Order matters for exported rows and for documents written back to disk.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// Field is a single key/value pair used to build objects.
type Field struct {
	Key   string
	Value JSONValue
}

// NewObject creates an empty object.
func NewObject() *JSONObject {
	return &JSONObject{values: make(map[string]JSONValue)}
}

// ObjectOf creates an object from fields, in order. Later duplicates
// overwrite the value but keep the first position.
func ObjectOf(fields ...Field) *JSONObject {
	obj := &JSONObject{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]JSONValue, len(fields)),
	}
	for _, f := range fields {
		obj.Set(f.Key, f.Value)
	}
	return obj
}

// Len returns the number of keys.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get looks up key. The boolean distinguishes a missing key from a JSON null.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *JSONObject) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set assigns key. New keys are appended; existing keys keep their position.
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.values == nil {
		o.values = make(map[string]JSONValue)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key if present.
func (o *JSONObject) Delete(key string) {
	if o == nil {
		return
	}
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// MarshalJSON writes the object with keys in insertion order.
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v JSONValue) JSONValue {
	switch t := v.(type) {
	case *JSONObject:
		if t == nil {
			return t
		}
		out := &JSONObject{
			keys:   make([]string, len(t.keys)),
			values: make(map[string]JSONValue, len(t.values)),
		}
		copy(out.keys, t.keys)
		for k, val := range t.values {
			out.values[k] = Clone(val)
		}
		return out
	case JSONArray:
		if t == nil {
			return t
		}
		out := make(JSONArray, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// ToInterface converts v into plain map[string]interface{} and
// []interface{} values. encoding/json sorts map keys, which makes the
// result useful for canonical serialization.
func ToInterface(v JSONValue) interface{} {
	switch t := v.(type) {
	case *JSONObject:
		if t == nil {
			return nil
		}
		out := make(map[string]interface{}, len(t.values))
		for k, val := range t.values {
			out[k] = ToInterface(val)
		}
		return out
	case JSONArray:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = ToInterface(val)
		}
		return out
	default:
		return v
	}
}

// FromInterface is the inverse of ToInterface. Map keys are sorted since
// Go maps carry no order.
func FromInterface(v interface{}) JSONValue {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromInterface(t[k]))
		}
		return obj
	case []interface{}:
		arr := make(JSONArray, len(t))
		for i, val := range t {
			arr[i] = FromInterface(val)
		}
		return arr
	default:
		return v
	}
}

// Marshal encodes v as compact JSON without HTML escaping.
func Marshal(v JSONValue) ([]byte, error) {
	return marshalNoEscape(v)
}

// MarshalIndent encodes v with the given indent, without HTML escaping.
func MarshalIndent(v JSONValue, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Document holds a parsed JSON document.
type Document struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}
