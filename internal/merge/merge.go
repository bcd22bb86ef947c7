// Package merge inner-joins the records of two documents on a tuple of
// record-relative field paths.
package merge

import (
	"fmt"
	"log/slog"

	"github.com/mcncl/jsonshaper/internal/accessor"
	apperrors "github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
	"github.com/mcncl/jsonshaper/internal/records"
)

// User-facing precondition messages.
const (
	MsgMissingDataset     = "Upload both datasets before merging."
	MsgNoJoinKeys         = "Select at least one join key."
	MsgInvalidJoinKeys    = "Select valid join keys."
	MsgNoPrimaryRecords   = "Primary dataset has no iterable items for the selected root path."
	MsgNoSecondaryRecords = "Secondary dataset has no iterable items for the selected root path."
)

// Stats counts how the two sides matched.
type Stats struct {
	PrimaryTotal   int `json:"primary_total"`
	SecondaryTotal int `json:"secondary_total"`
	MatchPairs     int `json:"match_pairs"`
	PrimaryOnly    int `json:"primary_only"`
	SecondaryOnly  int `json:"secondary_only"`
}

// Summary renders the stats as a one-line status message.
func (s Stats) Summary() string {
	return fmt.Sprintf("Matches: %d | Primary rows: %d (unmatched %d) | Secondary rows: %d (unmatched %d).",
		s.MatchPairs, s.PrimaryTotal, s.PrimaryOnly, s.SecondaryTotal, s.SecondaryOnly)
}

// Result is the outcome of a merge. Payload is a list of merged records, or
// a list with one list per primary group when Grouped is set.
type Result struct {
	Payload models.JSONArray
	Grouped bool
	Stats   Stats
}

// Empty reports whether the payload holds nothing to write. A grouped
// payload keeps one entry per primary group, so it is never empty even when
// no pair matched.
func (r Result) Empty() bool {
	return len(r.Payload) == 0
}

// Records returns the merged records with groups concatenated.
func (r Result) Records() []*models.JSONObject {
	return PreviewRecords(r.Payload, r.Grouped, -1)
}

type options struct {
	nfc    bool
	logger *slog.Logger
}

// Option configures Perform.
type Option func(*options)

// WithUnicodeNormalization applies NFC to string key components after
// trimming, so composed and decomposed forms match.
func WithUnicodeNormalization() Option {
	return func(o *options) {
		o.nfc = true
	}
}

// WithLogger sets the logger used for merge diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Perform joins the records under primaryRoot with those under
// secondaryRoot. Every primary record is paired with every secondary record
// sharing its join-key tuple, in secondary order; unmatched records on
// either side are counted and dropped. The primary grouping is kept.
func Perform(primaryDoc, secondaryDoc models.JSONValue, primaryRoot, secondaryRoot string, joinKeys []string, opts ...Option) (Result, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	if primaryDoc == nil || secondaryDoc == nil {
		return Result{}, apperrors.NewMergeError(MsgMissingDataset, apperrors.ErrMissingDataset)
	}
	if len(joinKeys) == 0 {
		return Result{}, apperrors.NewMergeError(MsgNoJoinKeys, apperrors.ErrNoJoinKeys)
	}
	keys := make([]string, 0, len(joinKeys))
	for _, k := range joinKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return Result{}, apperrors.NewMergeError(MsgInvalidJoinKeys, apperrors.ErrNoJoinKeys)
	}

	primaryGroups, grouped := records.ResolveGroupsForMerge(primaryDoc, primaryRoot)
	secondaryGroups, _ := records.ResolveGroupsForMerge(secondaryDoc, secondaryRoot)
	primaryRecords := records.Flatten(primaryGroups)
	secondaryRecords := records.Flatten(secondaryGroups)

	if len(primaryRecords) == 0 {
		return Result{}, apperrors.NewMergeError(MsgNoPrimaryRecords, apperrors.ErrNoRecords)
	}
	if len(secondaryRecords) == 0 {
		return Result{}, apperrors.NewMergeError(MsgNoSecondaryRecords, apperrors.ErrNoRecords)
	}

	index := make(map[JoinKey][]int)
	for i, rec := range secondaryRecords {
		key := buildJoinKeyTuple(rec, keys, o.nfc)
		index[key] = append(index[key], i)
	}

	var rows models.JSONArray
	var groups []models.JSONArray
	if grouped {
		groups = make([]models.JSONArray, len(primaryGroups))
		for i := range groups {
			groups[i] = models.JSONArray{}
		}
	} else {
		rows = models.JSONArray{}
	}

	matched := make(map[int]struct{})
	stats := Stats{PrimaryTotal: len(primaryRecords), SecondaryTotal: len(secondaryRecords)}

	for gi, group := range primaryGroups {
		for _, rec := range group {
			matches := index[buildJoinKeyTuple(rec, keys, o.nfc)]
			if len(matches) == 0 {
				stats.PrimaryOnly++
				continue
			}
			for _, si := range matches {
				merged := BuildMergedRecord(rec, secondaryRecords[si])
				if grouped {
					groups[gi] = append(groups[gi], merged)
				} else {
					rows = append(rows, merged)
				}
				matched[si] = struct{}{}
				stats.MatchPairs++
			}
		}
	}
	stats.SecondaryOnly = stats.SecondaryTotal - len(matched)

	o.logger.Debug("merge complete",
		"join_keys", keys,
		"grouped", grouped,
		"matches", stats.MatchPairs,
		"primary_only", stats.PrimaryOnly,
		"secondary_only", stats.SecondaryOnly)

	if grouped {
		payload := make(models.JSONArray, len(groups))
		for i, g := range groups {
			payload[i] = g
		}
		return Result{Payload: payload, Grouped: true, Stats: stats}, nil
	}
	return Result{Payload: rows, Stats: stats}, nil
}

// BuildMergedRecord deep-copies primary (or secondary when primary is nil)
// and fills in every secondary key that is missing or null. Primary values
// that are not null always win.
func BuildMergedRecord(primary, secondary *models.JSONObject) *models.JSONObject {
	var merged *models.JSONObject
	switch {
	case primary != nil:
		merged = models.Clone(primary).(*models.JSONObject)
	case secondary != nil:
		merged = models.Clone(secondary).(*models.JSONObject)
	default:
		return models.NewObject()
	}

	if secondary == nil {
		return merged
	}
	for _, key := range secondary.Keys() {
		if current, ok := merged.Get(key); ok && current != nil {
			continue
		}
		v, _ := secondary.Get(key)
		merged.Set(key, models.Clone(v))
	}
	return merged
}

// BuildMergedOutputContainer embeds payload in place of primaryRoot inside a
// deep copy of the primary document. The whole-document root, or a primary
// document that is not an object, yields the payload itself.
func BuildMergedOutputContainer(primaryDoc models.JSONValue, primaryRoot string, payload models.JSONValue) models.JSONValue {
	if pathutil.IsRoot(primaryRoot) {
		return payload
	}
	if models.KindOf(primaryDoc) != models.KindObject {
		return payload
	}
	return accessor.SetValueByPath(models.Clone(primaryDoc), primaryRoot, payload)
}

// PreviewRecords returns up to n merged records, concatenating groups when
// the payload is grouped. A negative n returns every record.
func PreviewRecords(payload models.JSONArray, grouped bool, n int) []*models.JSONObject {
	out := []*models.JSONObject{}
	add := func(v models.JSONValue) bool {
		if n >= 0 && len(out) >= n {
			return false
		}
		if obj, ok := v.(*models.JSONObject); ok && obj != nil {
			out = append(out, obj)
		}
		return true
	}

	for _, item := range payload {
		if grouped {
			group, _ := item.(models.JSONArray)
			for _, rec := range group {
				if !add(rec) {
					return out
				}
			}
			continue
		}
		if !add(item) {
			return out
		}
	}
	return out
}
