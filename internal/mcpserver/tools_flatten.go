package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/jsonshaper/internal/app"
	"github.com/mcncl/jsonshaper/internal/export"
)

type previewInput struct {
	Dataset datasetInput `json:"dataset"         jsonschema:"The JSON document to flatten"`
	Root    string       `json:"root,omitempty"  jsonschema:"Root path holding the records. Defaults to the suggested root."`
	Fields  []string     `json:"fields"          jsonschema:"Field paths to include, each as path or path=Column"`
	Limit   int          `json:"limit,omitempty" jsonschema:"Maximum records to return. Defaults to JSONSHAPER_PREVIEW_LIMIT."`
}

type previewOutput struct {
	Root      string   `json:"root"`
	Columns   []string `json:"columns"`
	Rows      string   `json:"rows"`
	RowCount  int      `json:"row_count"`
	Documents string   `json:"documents"`
}

func (t *tools) handlePreview(_ context.Context, _ *mcp.CallToolRequest, input previewInput) (*mcp.CallToolResult, previewOutput, error) {
	ds, err := input.Dataset.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), previewOutput{}, nil
	}
	mapping, err := t.cfg.ParseFields(input.Fields)
	if err != nil {
		return errResult(err), previewOutput{}, nil
	}

	root := ds.Root(input.Root)
	rows := t.exporter.Preview(ds.Doc, mapping, root, t.previewLimit(input.Limit))
	data, err := jsonText(export.RowsValue(rows))
	if err != nil {
		return errResult(err), previewOutput{}, nil
	}
	return nil, previewOutput{
		Root:      root,
		Columns:   mapping.Headers(),
		Rows:      data,
		RowCount:  len(rows),
		Documents: app.DocumentCountText(ds.Doc, root),
	}, nil
}

type exportInput struct {
	Dataset  datasetInput `json:"dataset"             jsonschema:"The JSON document to export"`
	Root     string       `json:"root,omitempty"      jsonschema:"Root path holding the records. Defaults to the suggested root."`
	Fields   []string     `json:"fields"              jsonschema:"Field paths to include, each as path or path=Column"`
	Format   string       `json:"format,omitempty"    jsonschema:"Output format: csv or json or sqlite. Defaults to csv."`
	FileName string       `json:"file_name,omitempty" jsonschema:"Output file name inside the output directory. Defaults to output plus the format extension."`
}

type exportOutput struct {
	WrittenTo string `json:"written_to"`
	Rows      int    `json:"rows"`
	Summary   string `json:"summary"`
}

func (t *tools) handleExport(ctx context.Context, _ *mcp.CallToolRequest, input exportInput) (*mcp.CallToolResult, exportOutput, error) {
	ds, err := input.Dataset.resolve(t.srv.MaxContentBytes)
	if err != nil {
		return errResult(err), exportOutput{}, nil
	}
	mapping, err := t.cfg.ParseFields(input.Fields)
	if err != nil {
		return errResult(err), exportOutput{}, nil
	}

	res, err := t.exporter.Export(ctx, app.ExportRequest{
		Doc:      ds.Doc,
		Mapping:  mapping,
		Root:     ds.Root(input.Root),
		Format:   input.Format,
		FileName: input.FileName,
	})
	if err != nil {
		return errResult(err), exportOutput{}, nil
	}
	return nil, exportOutput{
		WrittenTo: res.Path,
		Rows:      res.Rows,
		Summary:   fmt.Sprintf("%s (%d rows)", res.Status, res.Rows),
	}, nil
}
