package mcpserver

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/jsonshaper/internal/app"
	"github.com/mcncl/jsonshaper/internal/export"
	"github.com/mcncl/jsonshaper/internal/merge"
	"github.com/mcncl/jsonshaper/internal/models"
)

type joinKeysInput struct {
	Primary       datasetInput `json:"primary"                  jsonschema:"The primary JSON document"`
	Secondary     datasetInput `json:"secondary"                jsonschema:"The secondary JSON document"`
	PrimaryRoot   string       `json:"primary_root,omitempty"   jsonschema:"Root path of the primary records. Defaults to the suggested root."`
	SecondaryRoot string       `json:"secondary_root,omitempty" jsonschema:"Root path of the secondary records. Defaults to the suggested root."`
}

type joinKeysOutput struct {
	Common        []string `json:"common"`
	Selected      []string `json:"selected"`
	PrimaryRoot   string   `json:"primary_root"`
	SecondaryRoot string   `json:"secondary_root"`
	Primary       string   `json:"primary"`
	Secondary     string   `json:"secondary"`
}

func (t *tools) handleJoinKeys(_ context.Context, _ *mcp.CallToolRequest, input joinKeysInput) (*mcp.CallToolResult, joinKeysOutput, error) {
	left, right, err := t.resolvePair(input.Primary, input.Secondary, input.PrimaryRoot, input.SecondaryRoot, nil)
	if err != nil {
		return errResult(err), joinKeysOutput{}, nil
	}
	return nil, joinKeysOutput{
		Common:        right.JoinChoices,
		Selected:      right.JoinSelected,
		PrimaryRoot:   left.Root(input.PrimaryRoot),
		SecondaryRoot: right.Root(input.SecondaryRoot),
		Primary:       left.Status(),
		Secondary:     right.Status(),
	}, nil
}

// resolvePair loads both sides of a merge and intersects their record keys.
func (t *tools) resolvePair(primary, secondary datasetInput, primaryRoot, secondaryRoot string, current []string) (*app.MergeDataset, *app.MergeDataset, error) {
	p, err := primary.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return nil, nil, err
	}
	s, err := secondary.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return nil, nil, err
	}
	sample := t.cfg.Merge.SampleSize
	left := app.NewMergeDataset(p, app.PrimaryLabel, primaryRoot, sample, nil, nil)
	right := app.NewMergeDataset(s, app.SecondaryLabel, secondaryRoot, sample, left.RecordKeys, current)
	left.JoinChoices, left.JoinSelected = right.JoinChoices, right.JoinSelected
	return left, right, nil
}

type mergeInput struct {
	Primary       datasetInput `json:"primary"                  jsonschema:"The primary JSON document. Its shape is kept in the output."`
	Secondary     datasetInput `json:"secondary"                jsonschema:"The secondary JSON document"`
	PrimaryRoot   string       `json:"primary_root,omitempty"   jsonschema:"Root path of the primary records. Defaults to the suggested root."`
	SecondaryRoot string       `json:"secondary_root,omitempty" jsonschema:"Root path of the secondary records. Defaults to the suggested root."`
	JoinKeys      []string     `json:"join_keys"                jsonschema:"Record-relative field paths that must all be equal for records to match"`
	FileName      string       `json:"file_name,omitempty"      jsonschema:"Output file name. Defaults to merged_<random>.json in the output directory."`
}

type mergeOutput struct {
	WrittenTo string      `json:"written_to"`
	Stats     merge.Stats `json:"stats"`
	Grouped   bool        `json:"grouped"`
	Preview   string      `json:"preview"`
	Summary   string      `json:"summary"`
}

func (t *tools) handleMerge(ctx context.Context, _ *mcp.CallToolRequest, input mergeInput) (*mcp.CallToolResult, mergeOutput, error) {
	p, err := input.Primary.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	s, err := input.Secondary.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}

	out, err := t.merger.Merge(ctx, app.MergeRequest{
		Primary:       p.Doc,
		Secondary:     s.Doc,
		PrimaryRoot:   p.Root(input.PrimaryRoot),
		SecondaryRoot: s.Root(input.SecondaryRoot),
		JoinKeys:      input.JoinKeys,
		FileName:      input.FileName,
	})
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}

	preview := make(models.JSONArray, len(out.Preview))
	for i, r := range out.Preview {
		preview[i] = r
	}
	data, err := jsonText(preview)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	return nil, mergeOutput{
		WrittenTo: out.Path,
		Stats:     out.Stats,
		Grouped:   out.Grouped,
		Preview:   data,
		Summary:   out.Summary,
	}, nil
}

// jsonText renders v as indented JSON without a trailing newline.
func jsonText(v models.JSONValue) (string, error) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, v, "  "); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
