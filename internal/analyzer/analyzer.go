package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mcncl/jsonshaper/internal/accessor"
	"github.com/mcncl/jsonshaper/internal/config"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/records"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// Regex patterns for special string and number values
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339Regex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	rfc3339NanoRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	iso8601Regex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
	unixTimestampRegex = regexp.MustCompile(`^1[0-9]{9}$`)                                                                 // Unix timestamp (seconds since 1970)
	unixMilliRegex     = regexp.MustCompile(`^1[0-9]{12}$`)                                                                // Unix timestamp in milliseconds
)

// ValueKind is the observed shape of a field value.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindTime     ValueKind = "time"
	KindUUID     ValueKind = "uuid"
	KindInteger  ValueKind = "integer"
	KindUnixTime ValueKind = "unix_time"
	KindFloat    ValueKind = "float"
	KindBool     ValueKind = "bool"
	KindNull     ValueKind = "null"
	KindObject   ValueKind = "object"
)

// kindOrder fixes the order kinds are reported in.
var kindOrder = []ValueKind{KindString, KindTime, KindUUID, KindInteger, KindUnixTime, KindFloat, KindBool, KindObject, KindNull}

// FieldProfile describes one field path across the records under a root.
type FieldProfile struct {
	Path string `json:"path" yaml:"path"`
	// Kinds lists every kind observed, list elements included.
	Kinds []ValueKind `json:"kinds" yaml:"kinds"`
	// List is set when the path resolved to a list in any record.
	List bool `json:"list" yaml:"list"`
	// Present counts records where the path resolved to a non-null value.
	Present int `json:"present" yaml:"present"`
	// Records is the number of records inspected.
	Records int `json:"records" yaml:"records"`
}

// Coverage is the share of inspected records holding a value.
func (p FieldProfile) Coverage() float64 {
	if p.Records == 0 {
		return 0
	}
	return float64(p.Present) / float64(p.Records)
}

// Analyzer profiles the fields of the records under a root path

type Analyzer struct {
	// sampleSize caps the records inspected; zero means all of them
	sampleSize int
}

// NewAnalyzer creates an Analyzer that inspects every record.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// NewAnalyzerWithConfig creates an Analyzer honoring the configured sample size.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	a := NewAnalyzer()
	if cfg != nil && cfg.Profile.SampleSize > 0 {
		a.sampleSize = cfg.Profile.SampleSize
	}
	return a
}

type fieldStats struct {
	kinds   map[ValueKind]struct{}
	list    bool
	present int
}

// Profile inspects the records under root and returns one profile per
// field path, sorted by path. Paths are relative to the records.
func (a *Analyzer) Profile(doc models.JSONValue, root string) []FieldProfile {
	groups, _ := records.ResolveGroupsForMerge(doc, root)
	recs := records.Flatten(groups)
	if a.sampleSize > 0 && len(recs) > a.sampleSize {
		recs = recs[:a.sampleSize]
	}

	fields := make(map[string]*fieldStats)
	for _, rec := range recs {
		for _, path := range schema.ExtractAllKeys(rec).Sorted() {
			fs, ok := fields[path]
			if !ok {
				fs = &fieldStats{kinds: make(map[ValueKind]struct{})}
				fields[path] = fs
			}
			v, found := accessor.GetValueByPath(rec, path)
			if !found {
				fs.kinds[KindNull] = struct{}{}
				continue
			}
			fs.present++
			if list, isList := v.(models.JSONArray); isList {
				fs.list = true
				a.analyzeList(list, fs.kinds)
				continue
			}
			fs.kinds[a.analyzeNode(v)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	profiles := make([]FieldProfile, 0, len(paths))
	for _, p := range paths {
		fs := fields[p]
		profiles = append(profiles, FieldProfile{
			Path:    p,
			Kinds:   orderedKinds(fs.kinds),
			List:    fs.list,
			Present: fs.present,
			Records: len(recs),
		})
	}
	return profiles
}

// analyzeList classifies every element, descending into nested lists.
func (a *Analyzer) analyzeList(list models.JSONArray, kinds map[ValueKind]struct{}) {
	for _, item := range list {
		if nested, ok := item.(models.JSONArray); ok {
			a.analyzeList(nested, kinds)
			continue
		}
		kinds[a.analyzeNode(item)] = struct{}{}
	}
}

// analyzeNode classifies a single non-list value.
func (a *Analyzer) analyzeNode(node models.JSONValue) ValueKind {
	switch v := node.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return a.analyzeString(v)
	case json.Number:
		return a.analyzeNumber(v)
	}
	switch models.KindOf(node) {
	case models.KindObject:
		return KindObject
	case models.KindNumber:
		return a.analyzeNumber(json.Number(fmt.Sprint(node)))
	case models.KindNull:
		return KindNull
	default:
		return KindString
	}
}

func (a *Analyzer) analyzeString(s string) ValueKind {
	if uuidRegex.MatchString(s) {
		return KindUUID
	}

	// Check for various time formats (ordered by specificity)
	if rfc3339NanoRegex.MatchString(s) ||
		rfc3339Regex.MatchString(s) ||
		iso8601Regex.MatchString(s) ||
		dateOnlyRegex.MatchString(s) ||
		dateTimeRegex.MatchString(s) {
		return KindTime
	}

	return KindString
}

func (a *Analyzer) analyzeNumber(num json.Number) ValueKind {
	numStr := string(num)

	// Unix timestamps are common in APIs, in seconds or milliseconds
	if unixTimestampRegex.MatchString(numStr) || unixMilliRegex.MatchString(numStr) {
		return KindUnixTime
	}

	if _, err := num.Int64(); err == nil {
		return KindInteger
	}

	return KindFloat
}

func orderedKinds(set map[ValueKind]struct{}) []ValueKind {
	out := make([]ValueKind, 0, len(set))
	for _, k := range kindOrder {
		if _, ok := set[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// RenderText writes profiles as an aligned table.
func RenderText(w io.Writer, profiles []FieldProfile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKINDS\tLIST\tPRESENT")
	for _, p := range profiles {
		kinds := make([]string, len(p.Kinds))
		for i, k := range p.Kinds {
			kinds[i] = string(k)
		}
		list := ""
		if p.List {
			list = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\n", p.Path, strings.Join(kinds, ","), list, p.Present, p.Records)
	}
	return tw.Flush()
}
