package merge

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/parser"
)

func toJSON(t *testing.T, v models.JSONValue) string {
	t.Helper()
	b, err := models.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestPerform_InnerJoin(t *testing.T) {
	primary := parser.MustParseString(`[{"id": 1, "x": "a"}, {"id": 2, "x": "b"}]`)
	secondary := parser.MustParseString(`[{"id": 1, "y": "p"}, {"id": 3, "y": "q"}]`)

	result, err := Perform(primary, secondary, "(root)", "(root)", []string{"id"})
	require.NoError(t, err)

	assert.False(t, result.Grouped)
	assert.Equal(t, `[{"id":1,"x":"a","y":"p"}]`, toJSON(t, result.Payload))
	assert.Equal(t, Stats{PrimaryTotal: 2, SecondaryTotal: 2, MatchPairs: 1, PrimaryOnly: 1, SecondaryOnly: 1}, result.Stats)
	assert.Equal(t, "Matches: 1 | Primary rows: 2 (unmatched 1) | Secondary rows: 2 (unmatched 1).", result.Stats.Summary())
}

func TestPerform_DuplicateSecondaryKeys(t *testing.T) {
	primary := parser.MustParseString(`[{"id": 1, "x": "a"}, {"id": 1, "x": "b"}]`)
	secondary := parser.MustParseString(`[{"id": 1, "y": "p"}, {"id": 1, "y": "q"}, {"id": 9}]`)

	result, err := Perform(primary, secondary, "(root)", "(root)", []string{"id"})
	require.NoError(t, err)

	assert.Equal(t,
		`[{"id":1,"x":"a","y":"p"},{"id":1,"x":"a","y":"q"},{"id":1,"x":"b","y":"p"},{"id":1,"x":"b","y":"q"}]`,
		toJSON(t, result.Payload))
	assert.Equal(t, 4, result.Stats.MatchPairs)
	assert.Equal(t, 0, result.Stats.PrimaryOnly)
	assert.Equal(t, 1, result.Stats.SecondaryOnly)
}

func TestPerform_GroupedPrimaryKeepsGroups(t *testing.T) {
	primary := parser.MustParseString(`[[{"q": 1}], [{"q": 2}, {"q": 3}], [{"q": 9}]]`)
	secondary := parser.MustParseString(`{"answers": [{"q": 1, "a": "one"}, {"q": 3, "a": "three"}, {"q": 2, "a": "two"}]}`)

	result, err := Perform(primary, secondary, "(root)", "answers", []string{"q"})
	require.NoError(t, err)

	assert.True(t, result.Grouped)
	require.Len(t, result.Payload, 3)
	assert.Equal(t,
		`[[{"q":1,"a":"one"}],[{"q":2,"a":"two"},{"q":3,"a":"three"}],[]]`,
		toJSON(t, result.Payload))
	assert.Equal(t, 1, result.Stats.PrimaryOnly)
	assert.Len(t, result.Records(), 3)
}

func TestPerform_NestedRootsUseRecordRelativeKeys(t *testing.T) {
	primary := parser.MustParseString(`{"meta": {"v": 1}, "data": {"rows": [{"question": "Q1", "x": 1}]}}`)
	secondary := parser.MustParseString(`{"items": [{"question": " Q1 ", "y": 2}]}`)

	result, err := Perform(primary, secondary, "data.rows", "items", []string{"question"})
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q1","x":1,"y":2}]`, toJSON(t, result.Payload))

	out := BuildMergedOutputContainer(primary, "data.rows", result.Payload)
	assert.Equal(t, `{"meta":{"v":1},"data":{"rows":[{"question":"Q1","x":1,"y":2}]}}`, toJSON(t, out))
	assert.Equal(t, `{"meta":{"v":1},"data":{"rows":[{"question":"Q1","x":1}]}}`, toJSON(t, primary), "primary must not be mutated")
}

func TestPerform_CompositeAndStructuredKeys(t *testing.T) {
	primary := parser.MustParseString(`[{"k": {"b": 1, "a": [1, 2]}, "n": 1, "p": true}]`)
	secondary := parser.MustParseString(`[{"k": {"a": [1, 2], "b": 1}, "n": 1.0, "s": true}, {"k": {"a": [2, 1], "b": 1}, "n": 1}]`)

	result, err := Perform(primary, secondary, "(root)", "(root)", []string{"k", "n"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.MatchPairs)
	assert.Equal(t, 1, result.Stats.SecondaryOnly)
}

func TestPerform_UnicodeNormalization(t *testing.T) {
	primary := parser.MustParseString(`[{"name": "caf\u00e9"}]`)
	secondary := parser.MustParseString(`[{"name": "cafe\u0301", "v": 1}]`)

	plain, err := Perform(primary, secondary, "(root)", "(root)", []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Stats.MatchPairs)

	normalized, err := Perform(primary, secondary, "(root)", "(root)", []string{"name"}, WithUnicodeNormalization())
	require.NoError(t, err)
	assert.Equal(t, 1, normalized.Stats.MatchPairs)
}

func TestPerform_Errors(t *testing.T) {
	records := parser.MustParseString(`[{"id": 1}]`)
	scalars := parser.MustParseString(`[1, 2]`)

	tests := []struct {
		name      string
		primary   models.JSONValue
		secondary models.JSONValue
		joinKeys  []string
		message   string
		sentinel  error
	}{
		{name: "missing primary", primary: nil, secondary: records, joinKeys: []string{"id"}, message: MsgMissingDataset, sentinel: apperrors.ErrMissingDataset},
		{name: "missing secondary", primary: records, secondary: nil, joinKeys: []string{"id"}, message: MsgMissingDataset, sentinel: apperrors.ErrMissingDataset},
		{name: "no join keys", primary: records, secondary: records, joinKeys: nil, message: MsgNoJoinKeys, sentinel: apperrors.ErrNoJoinKeys},
		{name: "only empty join keys", primary: records, secondary: records, joinKeys: []string{"", ""}, message: MsgInvalidJoinKeys, sentinel: apperrors.ErrNoJoinKeys},
		{name: "no primary records", primary: scalars, secondary: records, joinKeys: []string{"id"}, message: MsgNoPrimaryRecords, sentinel: apperrors.ErrNoRecords},
		{name: "no secondary records", primary: records, secondary: scalars, joinKeys: []string{"id"}, message: MsgNoSecondaryRecords, sentinel: apperrors.ErrNoRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Perform(tt.primary, tt.secondary, "(root)", "(root)", tt.joinKeys)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrorTypeMerge, appErr.Type)
			assert.Equal(t, tt.message, apperrors.Message(err))
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestPerform_EmptyResult(t *testing.T) {
	primary := parser.MustParseString(`[{"id": 1}]`)
	secondary := parser.MustParseString(`[{"id": 2}]`)

	result, err := Perform(primary, secondary, "(root)", "(root)", []string{"id"})
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Payload)
}

func TestPerform_GroupedNoMatchesKeepsGroups(t *testing.T) {
	primary := parser.MustParseString(`{"meta": "m", "data": [[{"id": 1}], [{"id": 2}]]}`)
	secondary := parser.MustParseString(`[{"id": 9}]`)

	result, err := Perform(primary, secondary, "data", "(root)", []string{"id"})
	require.NoError(t, err)
	assert.False(t, result.Empty())
	assert.True(t, result.Grouped)
	assert.Equal(t, 0, result.Stats.MatchPairs)
	assert.Equal(t, models.JSONArray{models.JSONArray{}, models.JSONArray{}}, result.Payload)

	out, err := models.Marshal(BuildMergedOutputContainer(primary, "data", result.Payload))
	require.NoError(t, err)
	assert.Equal(t, `{"meta":"m","data":[[],[]]}`, string(out))
}

func TestPerform_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	primary := parser.MustParseString(`[{"id": 1}]`)
	_, err := Perform(primary, primary, "(root)", "(root)", []string{"id"}, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "merge complete")
	assert.Contains(t, buf.String(), "matches=1")
}

func TestBuildMergedRecord(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		expected  string
	}{
		{name: "primary wins", primary: `{"a": 1, "b": 2}`, secondary: `{"a": 9, "c": 3}`, expected: `{"a":1,"b":2,"c":3}`},
		{name: "null in primary is filled", primary: `{"a": null, "b": 2}`, secondary: `{"a": 9}`, expected: `{"a":9,"b":2}`},
		{name: "null in secondary does not clear", primary: `{"a": 1}`, secondary: `{"a": null, "b": null}`, expected: `{"a":1,"b":null}`},
		{name: "nested values are copied whole", primary: `{"o": {"x": 1}}`, secondary: `{"o": {"y": 2}, "p": {"z": 3}}`, expected: `{"o":{"x":1},"p":{"z":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parser.MustParseString(tt.primary).(*models.JSONObject)
			s := parser.MustParseString(tt.secondary).(*models.JSONObject)
			assert.Equal(t, tt.expected, toJSON(t, BuildMergedRecord(p, s)))
		})
	}
}

func TestBuildMergedRecord_DeepCopies(t *testing.T) {
	p := parser.MustParseString(`{"o": {"x": 1}}`).(*models.JSONObject)
	s := parser.MustParseString(`{"p": {"z": 3}}`).(*models.JSONObject)

	merged := BuildMergedRecord(p, s)
	o, _ := merged.Get("o")
	o.(*models.JSONObject).Set("x", json.Number("42"))
	pv, _ := merged.Get("p")
	pv.(*models.JSONObject).Set("z", json.Number("42"))

	assert.Equal(t, `{"o":{"x":1}}`, toJSON(t, p))
	assert.Equal(t, `{"p":{"z":3}}`, toJSON(t, s))
}

func TestBuildMergedRecord_NilSides(t *testing.T) {
	s := parser.MustParseString(`{"a": 1}`).(*models.JSONObject)
	assert.Equal(t, `{"a":1}`, toJSON(t, BuildMergedRecord(nil, s)))
	assert.Equal(t, `{"a":1}`, toJSON(t, BuildMergedRecord(s, nil)))
	assert.Equal(t, `{}`, toJSON(t, BuildMergedRecord(nil, nil)))
}

func TestBuildMergedOutputContainer(t *testing.T) {
	payload := models.JSONArray{models.ObjectOf(models.Field{Key: "id", Value: json.Number("1")})}

	assert.Equal(t, `[{"id":1}]`, toJSON(t, BuildMergedOutputContainer(parser.MustParseString(`{"rows": []}`), "(root)", payload)))
	assert.Equal(t, `[{"id":1}]`, toJSON(t, BuildMergedOutputContainer(parser.MustParseString(`[[]]`), "0", payload)))
	assert.Equal(t, `{"rows":[{"id":1}],"n":2}`, toJSON(t, BuildMergedOutputContainer(parser.MustParseString(`{"rows": [], "n": 2}`), "rows", payload)))
}

func TestPreviewRecords(t *testing.T) {
	flat := parser.MustParseString(`[{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}]`).(models.JSONArray)
	assert.Len(t, PreviewRecords(flat, false, 3), 3)
	assert.Len(t, PreviewRecords(flat, false, -1), 4)

	grouped := parser.MustParseString(`[[{"a": 1}], [], [{"a": 2}, {"a": 3}, {"a": 4}]]`).(models.JSONArray)
	got := PreviewRecords(grouped, true, 3)
	require.Len(t, got, 3)
	v, _ := got[2].Get("a")
	assert.Equal(t, json.Number("3"), v)
}
