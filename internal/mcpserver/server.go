// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes field discovery, flattening and merging as tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/jsonshaper/internal/app"
	"github.com/mcncl/jsonshaper/internal/config"
	apperrors "github.com/mcncl/jsonshaper/internal/errors"
)

const serverInstructions = `jsonshaper MCP server: discovers the field paths of JSON documents, flattens records into tables and inner-joins two documents on shared fields.

Documents are passed as {"file": "<path>"} or {"content": "<json>"}. Field paths use "." between segments; a literal dot inside a key is written as "\.". The root "(root)" means the whole document.

Configuration via JSONSHAPER_* environment variables:
- JSONSHAPER_PREVIEW_LIMIT (default: 3) - records returned by preview and merge
- JSONSHAPER_MAX_PREVIEW_LIMIT (default: 100) - upper bound for a requested preview limit
- JSONSHAPER_OUTPUT_DIR (default: system temp dir) - where export and merge write files
- JSONSHAPER_NAME_STYLE (default: none) - column naming style: snake, camel, lower_camel, kebab, title
- JSONSHAPER_SAMPLE_SIZE (default: 50) - records sampled for merge join-key discovery
- JSONSHAPER_UNICODE_NORMALIZE (default: false) - NFC-normalize string join keys
- JSONSHAPER_MAX_CONTENT_BYTES (default: 33554432) - size limit for inline content`

// tools holds the handlers and their shared configuration.
type tools struct {
	srv      *serverConfig
	cfg      *config.Config
	exporter *app.Exporter
	merger   *app.Merger
}

func newTools(srv *serverConfig, base *config.Config, logger *slog.Logger) *tools {
	if base == nil {
		base = config.NewConfig()
	}
	cfg := srv.apply(base)
	return &tools{
		srv:      srv,
		cfg:      cfg,
		exporter: app.NewExporter(cfg, logger),
		merger:   app.NewMerger(cfg, logger),
	}
}

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled. base supplies the defaults that
// JSONSHAPER_* variables override.
func Run(ctx context.Context, version string, base *config.Config, logger *slog.Logger) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "jsonshaper", Version: version},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, newTools(loadConfig(), base, logger))
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_fields",
		Description: "List every field path found anywhere in a JSON document, sorted. Fields inside lists use the list's path. Also returns the candidate record roots and the default root.",
	}, t.handleListFields)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "field_tree",
		Description: "Show the field paths of a JSON document as an indented tree. A path that is both a value and a parent is marked as selectable.",
	}, t.handleFieldTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile",
		Description: "Profile the records under a root: for each record-relative field, the value kinds seen (string, integer, float, bool, time, uuid, unix_time, object, null), whether it held lists and how many records carried it.",
	}, t.handleProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview",
		Description: "Flatten the first records under a root into rows keyed by output column name. Fields are given as \"path\" or \"path=Column\". Lists of scalars are joined with \", \"; nested objects and lists become compact JSON text. Missing fields are null.",
	}, t.handlePreview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export",
		Description: "Flatten every record under a root and write the rows to a csv, json or sqlite file in the output directory. Returns the written path.",
	}, t.handleExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "join_keys",
		Description: "List the record fields shared by two documents, usable as merge join keys, with a suggested selection.",
	}, t.handleJoinKeys)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge",
		Description: "Inner-join the records of a primary and a secondary document on one or more join keys. Each primary record is paired with every secondary record sharing its key values; primary values win and secondary values fill missing or null keys. The primary document is written with its records replaced by the merged records.",
	}, t.handleMerge)
}

func (t *tools) previewLimit(limit int) int {
	if limit <= 0 {
		limit = t.srv.PreviewLimit
	}
	if limit > t.srv.MaxPreviewLimit {
		limit = t.srv.MaxPreviewLimit
	}
	return limit
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(apperrors.UserFriendlyError(err), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
