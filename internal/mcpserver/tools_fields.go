package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/jsonshaper/internal/analyzer"
	"github.com/mcncl/jsonshaper/internal/app"
	"github.com/mcncl/jsonshaper/internal/schema"
)

type listFieldsInput struct {
	Dataset datasetInput `json:"dataset"             jsonschema:"The JSON document to inspect"`
	Root    string       `json:"root,omitempty"      jsonschema:"Root path used for the document count. Defaults to the suggested root."`
	All     bool         `json:"all,omitempty"       jsonschema:"Include fields matched by configured exclude patterns"`
}

type listFieldsOutput struct {
	Fields      []string `json:"fields"`
	FieldCount  int      `json:"field_count"`
	Roots       []string `json:"roots"`
	DefaultRoot string   `json:"default_root"`
	Documents   string   `json:"documents"`
	Summary     string   `json:"summary"`
}

func (t *tools) handleListFields(_ context.Context, _ *mcp.CallToolRequest, input listFieldsInput) (*mcp.CallToolResult, listFieldsOutput, error) {
	ds, err := input.Dataset.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), listFieldsOutput{}, nil
	}

	fields := ds.Keys
	if !input.All {
		fields = t.cfg.SelectableFields(fields)
	}
	return nil, listFieldsOutput{
		Fields:      fields,
		FieldCount:  len(fields),
		Roots:       ds.RootChoices,
		DefaultRoot: ds.DefaultRoot,
		Documents:   app.DocumentCountText(ds.Doc, ds.Root(input.Root)),
		Summary:     ds.Status(),
	}, nil
}

type fieldTreeInput struct {
	Dataset datasetInput `json:"dataset" jsonschema:"The JSON document to inspect"`
}

type fieldTreeOutput struct {
	Tree  string   `json:"tree"`
	Paths []string `json:"paths"`
}

func (t *tools) handleFieldTree(_ context.Context, _ *mcp.CallToolRequest, input fieldTreeInput) (*mcp.CallToolResult, fieldTreeOutput, error) {
	ds, err := input.Dataset.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), fieldTreeOutput{}, nil
	}

	tree := ds.Tree()
	var sb strings.Builder
	if err := schema.RenderText(&sb, tree); err != nil {
		return errResult(err), fieldTreeOutput{}, nil
	}
	return nil, fieldTreeOutput{Tree: sb.String(), Paths: tree.Paths()}, nil
}

type profileInput struct {
	Dataset datasetInput `json:"dataset"        jsonschema:"The JSON document to profile"`
	Root    string       `json:"root,omitempty" jsonschema:"Root path holding the records. Defaults to the suggested root."`
}

type profileOutput struct {
	Root    string                  `json:"root"`
	Fields  []analyzer.FieldProfile `json:"fields"`
	Summary string                  `json:"summary"`
}

func (t *tools) handleProfile(_ context.Context, _ *mcp.CallToolRequest, input profileInput) (*mcp.CallToolResult, profileOutput, error) {
	ds, err := input.Dataset.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), profileOutput{}, nil
	}

	root := ds.Root(input.Root)
	profiles := analyzer.NewAnalyzerWithConfig(t.cfg).Profile(ds.Doc, root)
	return nil, profileOutput{
		Root:    root,
		Fields:  profiles,
		Summary: fmt.Sprintf("Profiled %d fields under %s. %s", len(profiles), root, app.DocumentCountText(ds.Doc, root)),
	}, nil
}
