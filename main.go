package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonshaper/internal/analyzer"
	"github.com/mcncl/jsonshaper/internal/app"
	"github.com/mcncl/jsonshaper/internal/config"
	"github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/export"
	"github.com/mcncl/jsonshaper/internal/flatten"
	"github.com/mcncl/jsonshaper/internal/mcpserver"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// CLI defines the command-line interface
type CLI struct {
	Config    string `help:"Path to a config file. Defaults to the nearest .jsonshaper.yml." type:"path"`
	OutputDir string `help:"Directory for exported and merged files." type:"path"`
	Style     string `help:"Column naming style: none, snake, camel, lower_camel, kebab, title."`
	Debug     bool   `help:"Enable debug logging." short:"d"`

	Fields   FieldsCmd   `cmd:"" help:"List every field path in a JSON document."`
	Roots    RootsCmd    `cmd:"" help:"List the candidate record roots of a JSON document."`
	Tree     TreeCmd     `cmd:"" help:"Show the field paths as a tree."`
	Count    CountCmd    `cmd:"" help:"Count the records under a root."`
	Profile  ProfileCmd  `cmd:"" help:"Profile value kinds per record field."`
	Preview  PreviewCmd  `cmd:"" help:"Flatten the first records under a root."`
	Export   ExportCmd   `cmd:"" help:"Flatten every record under a root and write a csv, json or sqlite file."`
	JoinKeys JoinKeysCmd `cmd:"" name:"join-keys" help:"List the record fields two documents share."`
	Merge    MergeCmd    `cmd:"" help:"Inner-join two JSON documents on shared record fields."`
	MCP      MCPCmd      `cmd:"" name:"mcp" help:"Serve the tools over MCP on stdio."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
	Stdin  io.Reader
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	var cli CLI
	// Parse CLI arguments with Kong
	parser := kong.Must(&cli,
		kong.Name("jsonshaper"),
		kong.Description("Discover, flatten and merge the records of JSON documents"),
		kong.UsageOnError(),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		parser.FatalIfErrorf(err)
	}

	ctx, err := newContext(&cli, os.Stdout, os.Stdin, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonshaper --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration with CLI precedence and sets up logging.
func newContext(cli *CLI, out io.Writer, stdin io.Reader, logOut io.Writer) (*Context, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		OutputDir: cli.OutputDir,
		Style:     cli.Style,
		Debug:     cli.Debug,
	})
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	} else if cfg.Dev.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	return &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Logger: logger,
		Out:    out,
		Stdin:  stdin,
	}, nil
}

// loadInput parses JSON from a file, or from stdin when path is empty or "-".
func (c *Context) loadInput(path string) (*app.Dataset, error) {
	if path != "" && path != "-" {
		return app.LoadDataset(path)
	}

	if f, ok := c.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		// Terminal is interactive (not piped)
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(c.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return app.LoadDatasetBytes("stdin", jsonData)
}

// root picks the record root: the flag, then the config, then the dataset default.
func (c *Context) root(ds *app.Dataset, flag string) string {
	if flag != "" {
		return flag
	}
	return ds.Root(c.Config.RootPath)
}

// mapping builds the output columns from field specs, or from every
// selectable field when no field is named.
func (c *Context) mapping(ds *app.Dataset, specs []string) (flatten.FieldMapping, error) {
	if len(specs) == 0 {
		return c.Config.FieldMapping(c.Config.SelectableFields(ds.Keys))
	}
	return c.Config.ParseFields(specs)
}

func (c *Context) writeEncoded(format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(c.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// InputFlags selects the JSON document to read
type InputFlags struct {
	Input string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
}

// FieldsCmd lists field paths
type FieldsCmd struct {
	InputFlags `embed:""`

	All    bool   `help:"Include fields matched by exclude patterns."`
	Output string `help:"Output format: text, json or yaml." short:"o" default:"text" enum:"text,json,yaml"`
}

func (cmd *FieldsCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	fields := ds.Keys
	if !cmd.All {
		fields = ctx.Config.SelectableFields(fields)
	}
	ctx.Logger.Info(ds.Status(), "input", ds.Name)

	if cmd.Output != "text" {
		return ctx.writeEncoded(cmd.Output, fields)
	}
	for _, f := range fields {
		fmt.Fprintln(ctx.Out, f)
	}
	return nil
}

// RootsCmd lists candidate roots
type RootsCmd struct {
	InputFlags `embed:""`
}

func (cmd *RootsCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	for _, r := range ds.RootChoices {
		marker := " "
		if r == ds.DefaultRoot {
			marker = "*"
		}
		fmt.Fprintf(ctx.Out, "%s %s\t%s\n", marker, r, app.DocumentCountText(ds.Doc, r))
	}
	return nil
}

// TreeCmd renders the field tree
type TreeCmd struct {
	InputFlags `embed:""`

	Output string `help:"Output format: text, json or yaml." short:"o" default:"text" enum:"text,json,yaml"`
}

func (cmd *TreeCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	tree := ds.Tree()
	if cmd.Output != "text" {
		return ctx.writeEncoded(cmd.Output, tree)
	}
	return schema.RenderText(ctx.Out, tree)
}

// CountCmd counts records under a root
type CountCmd struct {
	InputFlags `embed:""`

	Root string `help:"Root path holding the records." short:"r"`
}

func (cmd *CountCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, app.DocumentCountText(ds.Doc, ctx.root(ds, cmd.Root)))
	return nil
}

// ProfileCmd profiles record fields
type ProfileCmd struct {
	InputFlags `embed:""`

	Root   string `help:"Root path holding the records." short:"r"`
	Output string `help:"Output format: text, json or yaml." short:"o" default:"text" enum:"text,json,yaml"`
}

func (cmd *ProfileCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	profiles := analyzer.NewAnalyzerWithConfig(ctx.Config).Profile(ds.Doc, ctx.root(ds, cmd.Root))
	if cmd.Output != "text" {
		return ctx.writeEncoded(cmd.Output, profiles)
	}
	return analyzer.RenderText(ctx.Out, profiles)
}

// PreviewCmd prints flattened records
type PreviewCmd struct {
	InputFlags `embed:""`

	Root   string   `help:"Root path holding the records." short:"r"`
	Fields []string `help:"Field to include, as path or path=Column. Repeatable. Defaults to every field." short:"f" name:"field" sep:"none"`
	Limit  int      `help:"Maximum records to show. Defaults to preview.limit." short:"n"`
}

func (cmd *PreviewCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	mapping, err := ctx.mapping(ds, cmd.Fields)
	if err != nil {
		return err
	}
	root := ctx.root(ds, cmd.Root)
	rows := app.NewExporter(ctx.Config, ctx.Logger).Preview(ds.Doc, mapping, root, cmd.Limit)
	if ctx.Debug {
		ctx.Logger.Debug("preview rows", "root", root, "dump", spew.Sdump(rows))
	}

	fmt.Fprintln(ctx.Out, app.DocumentCountText(ds.Doc, root))
	return export.WriteJSON(ctx.Out, export.RowsValue(rows), ctx.Config.Indent())
}

// ExportCmd writes flattened records to a file
type ExportCmd struct {
	InputFlags `embed:""`

	Root     string   `help:"Root path holding the records." short:"r"`
	Fields   []string `help:"Field to include, as path or path=Column. Repeatable. Defaults to every field." short:"f" name:"field" sep:"none"`
	Format   string   `help:"Output format: csv, json or sqlite. Defaults to export.format."`
	FileName string   `help:"Output file name. Defaults to output plus the format extension." short:"o" name:"out"`
}

func (cmd *ExportCmd) Run(ctx *Context) error {
	ds, err := ctx.loadInput(cmd.Input)
	if err != nil {
		return err
	}
	mapping, err := ctx.mapping(ds, cmd.Fields)
	if err != nil {
		return err
	}
	res, err := app.NewExporter(ctx.Config, ctx.Logger).Export(context.Background(), app.ExportRequest{
		Doc:      ds.Doc,
		Mapping:  mapping,
		Root:     ctx.root(ds, cmd.Root),
		Format:   cmd.Format,
		FileName: cmd.FileName,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, res.Status)
	return nil
}

// PairFlags selects the two documents of a merge
type PairFlags struct {
	Primary       string `help:"Path to the primary JSON file." required:"" type:"path"`
	Secondary     string `help:"Path to the secondary JSON file." required:"" type:"path"`
	PrimaryRoot   string `help:"Root path of the primary records."`
	SecondaryRoot string `help:"Root path of the secondary records."`
}

func (p PairFlags) load(ctx *Context, current []string) (*app.MergeDataset, *app.MergeDataset, error) {
	primary, err := app.LoadDataset(p.Primary)
	if err != nil {
		return nil, nil, err
	}
	secondary, err := app.LoadDataset(p.Secondary)
	if err != nil {
		return nil, nil, err
	}
	sample := ctx.Config.Merge.SampleSize
	left := app.NewMergeDataset(primary, app.PrimaryLabel, p.PrimaryRoot, sample, nil, nil)
	right := app.NewMergeDataset(secondary, app.SecondaryLabel, p.SecondaryRoot, sample, left.RecordKeys, current)
	ctx.Logger.Info(left.Status())
	ctx.Logger.Info(right.Status())
	return left, right, nil
}

// JoinKeysCmd lists shared record fields
type JoinKeysCmd struct {
	PairFlags `embed:""`
}

func (cmd *JoinKeysCmd) Run(ctx *Context) error {
	_, right, err := cmd.load(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range right.JoinChoices {
		fmt.Fprintln(ctx.Out, k)
	}
	return nil
}

// MergeCmd joins two documents
type MergeCmd struct {
	PairFlags `embed:""`

	Keys     []string `help:"Join key, as a record-relative field path. Repeatable." short:"k" name:"key" sep:"none"`
	FileName string   `help:"Output file name. Defaults to merged_<random>.json." short:"o" name:"out"`
}

func (cmd *MergeCmd) Run(ctx *Context) error {
	left, right, err := cmd.load(ctx, cmd.Keys)
	if err != nil {
		return err
	}
	keys := cmd.Keys
	if len(keys) == 0 {
		keys = right.JoinSelected
		ctx.Logger.Info("using suggested join keys", "keys", strings.Join(keys, ","))
	}

	out, err := app.NewMerger(ctx.Config, ctx.Logger).Merge(context.Background(), app.MergeRequest{
		Primary:       left.Doc,
		Secondary:     right.Doc,
		PrimaryRoot:   left.Root(cmd.PrimaryRoot),
		SecondaryRoot: right.Root(cmd.SecondaryRoot),
		JoinKeys:      keys,
		FileName:      cmd.FileName,
	})
	if err != nil {
		return err
	}
	if ctx.Debug {
		ctx.Logger.Debug("merge preview", "dump", spew.Sdump(out.Preview))
	}

	fmt.Fprintln(ctx.Out, out.Summary)
	fmt.Fprintf(ctx.Out, "Saved to %s\n", out.Path)
	return export.WriteJSON(ctx.Out, export.RowsValue(out.Preview), ctx.Config.Indent())
}

// MCPCmd runs the MCP server
type MCPCmd struct{}

func (cmd *MCPCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return mcpserver.Run(sigCtx, Version, ctx.Config, ctx.Logger)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Out, "jsonshaper version %s\n", Version)
	return nil
}
