// Package pathutil implements the dot-path addressing scheme used by every
// other package.
//
// A path is a sequence of object keys joined with '.'. Inside a key, '\' and
// '.' are escaped as `\\` and `\.`, so a key such as "gpt-3.5-turbo" stays a
// single segment:
//
//	responses.gpt-3\.5-turbo.response  ->  [responses gpt-3.5-turbo response]
//
// The reserved RootSentinel names the whole document and never collides with
// a real path produced by schema discovery.
package pathutil

import (
	"fmt"
	"strings"
)

// RootSentinel is the root path meaning "the whole document".
const RootSentinel = "(root)"

// IsRoot reports whether path denotes the whole document.
func IsRoot(path string) bool {
	return path == "" || path == RootSentinel
}

// EscapeSegment escapes a single key for use inside a dot path.
// Backslashes are escaped before dots; the other order would double-escape
// the backslashes introduced for the dots.
func EscapeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, `\`, `\\`)
	return strings.ReplaceAll(segment, ".", `\.`)
}

// EscapeValue stringifies v and escapes the result.
func EscapeValue(v any) string {
	if s, ok := v.(string); ok {
		return EscapeSegment(s)
	}
	return EscapeSegment(fmt.Sprint(v))
}

// UnescapeSegment reverses EscapeSegment. A backslash followed by any
// character emits that character; a trailing lone backslash is kept.
func UnescapeSegment(escaped string) string {
	if !strings.Contains(escaped, `\`) {
		return escaped
	}
	var b strings.Builder
	b.Grow(len(escaped))
	for i := 0; i < len(escaped); i++ {
		if escaped[i] == '\\' && i+1 < len(escaped) {
			i++
		}
		b.WriteByte(escaped[i])
	}
	return b.String()
}

// SplitPath splits path on unescaped dots and unescapes each segment.
// Empty segments are dropped, so leading, trailing and doubled separators
// are tolerated.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}

	var parts []string
	var buf strings.Builder
	escaping := false

	flush := func() {
		if seg := UnescapeSegment(buf.String()); seg != "" {
			parts = append(parts, seg)
		}
		buf.Reset()
	}

	for i := 0; i < len(path); i++ {
		ch := path[i]
		if escaping {
			// Keep the escape pair so UnescapeSegment can resolve it.
			buf.WriteByte('\\')
			buf.WriteByte(ch)
			escaping = false
			continue
		}
		switch ch {
		case '\\':
			escaping = true
		case '.':
			flush()
		default:
			buf.WriteByte(ch)
		}
	}
	if escaping {
		buf.WriteByte('\\')
	}
	flush()

	return parts
}

// JoinSegments escapes each segment and joins them with '.'.
func JoinSegments(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = EscapeSegment(s)
	}
	return strings.Join(escaped, ".")
}

// Append returns parent extended with one escaped key. An empty parent
// yields just the escaped key.
func Append(parent, key string) string {
	if parent == "" {
		return EscapeSegment(key)
	}
	return parent + "." + EscapeSegment(key)
}

// LastSegment returns the final unescaped segment of path, or path itself
// when it has no segments.
func LastSegment(path string) string {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}
