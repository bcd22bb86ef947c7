package merge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mcncl/jsonshaper/internal/accessor"
	"github.com/mcncl/jsonshaper/internal/models"
)

// KeyComponent is one normalized join-key value. The prefix records the
// kind so that the string "1" and the number 1 never compare equal.
type KeyComponent string

// JoinKey is the normalized tuple of join-key components for one record,
// usable as a map key.
type JoinKey string

// NormalizeKeyComponent makes a resolved value comparable across datasets.
// Strings are trimmed, numbers are compared by value, objects and lists are
// compared by their key-sorted JSON text. Absent and null normalize alike.
func NormalizeKeyComponent(v models.JSONValue, found bool) KeyComponent {
	return normalizeKeyComponent(v, found, false)
}

func normalizeKeyComponent(v models.JSONValue, found bool, nfc bool) KeyComponent {
	if !found {
		return "z:"
	}
	switch t := v.(type) {
	case nil:
		return "z:"
	case string:
		s := strings.TrimSpace(t)
		if nfc {
			s = norm.NFC.String(s)
		}
		return KeyComponent("s:" + s)
	case bool:
		return KeyComponent("b:" + strconv.FormatBool(t))
	case json.Number:
		return KeyComponent("n:" + canonicalNumber(t))
	}

	switch models.KindOf(v) {
	case models.KindNull:
		return "z:"
	case models.KindNumber:
		return KeyComponent("n:" + canonicalNumber(json.Number(fmt.Sprint(v))))
	case models.KindObject, models.KindArray:
		b, err := json.Marshal(models.ToInterface(v))
		if err != nil {
			return KeyComponent("j:" + fmt.Sprint(v))
		}
		return KeyComponent("j:" + string(b))
	default:
		return KeyComponent("u:" + fmt.Sprint(v))
	}
}

// canonicalNumber gives 1, 1.0 and 1e0 the same text.
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return n.String()
}

// BuildJoinKeyTuple resolves every join path against the record itself,
// never the enclosing document, and combines the normalized components.
func BuildJoinKeyTuple(record models.JSONValue, joinPaths []string) JoinKey {
	return buildJoinKeyTuple(record, joinPaths, false)
}

func buildJoinKeyTuple(record models.JSONValue, joinPaths []string, nfc bool) JoinKey {
	parts := make([]string, len(joinPaths))
	for i, path := range joinPaths {
		v, found := accessor.GetValueByPath(record, path)
		parts[i] = string(normalizeKeyComponent(v, found, nfc))
	}
	// A JSON array of the parts cannot be ambiguous whatever the parts hold.
	b, _ := json.Marshal(parts)
	return JoinKey(b)
}

// CommonJoinKeys returns the sorted field paths present on both sides and
// the selection to offer. Entries of current that are still common are
// kept; otherwise the first common path is selected. Both results are empty
// when the sides share nothing.
func CommonJoinKeys(primaryKeys, secondaryKeys, current []string) ([]string, []string) {
	secondary := make(map[string]struct{}, len(secondaryKeys))
	for _, k := range secondaryKeys {
		secondary[k] = struct{}{}
	}
	seen := make(map[string]struct{})
	common := []string{}
	for _, k := range primaryKeys {
		if _, ok := secondary[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		common = append(common, k)
	}
	sort.Strings(common)

	if len(common) == 0 {
		return common, []string{}
	}

	retained := []string{}
	for _, k := range current {
		if _, ok := seen[k]; ok {
			retained = append(retained, k)
		}
	}
	if len(retained) == 0 {
		retained = []string{common[0]}
	}
	return common, retained
}
