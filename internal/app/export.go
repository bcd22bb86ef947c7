package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcncl/jsonshaper/internal/config"
	apperrors "github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/export"
	"github.com/mcncl/jsonshaper/internal/flatten"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/pathutil"
)

const defaultExportName = "output"

// ExportRequest describes one export of the selected fields.
type ExportRequest struct {
	Doc     models.JSONValue
	Mapping flatten.FieldMapping
	Root    string
	// Format overrides the configured export format when set.
	Format   string
	FileName string
}

// ExportResult reports where the rows were written.
type ExportResult struct {
	Path   string
	Rows   int
	Status string
}

// Exporter writes flattened records in the configured format.
type Exporter struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewExporter creates an Exporter. A nil logger discards output.
func NewExporter(cfg *config.Config, logger *slog.Logger) *Exporter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{cfg: cfg, logger: logger}
}

// Preview flattens at most limit records for display. A limit below one
// uses the configured preview limit.
func (e *Exporter) Preview(doc models.JSONValue, mapping flatten.FieldMapping, root string, limit int) []flatten.Row {
	if limit < 1 {
		limit = e.cfg.Preview.Limit
	}
	return flatten.FlattenForPreview(doc, mapping, rootOrSentinel(root), limit,
		flatten.WithListSeparator(e.cfg.Export.ListSeparator))
}

// Export flattens every record under the root and writes the rows.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if req.Doc == nil {
		return ExportResult{}, apperrors.NewSelectionError("No data loaded.", apperrors.ErrNoData)
	}
	if len(req.Mapping) == 0 {
		return ExportResult{}, apperrors.NewSelectionError("No fields selected.", apperrors.ErrNoFields)
	}

	format := req.Format
	if format == "" {
		format = e.cfg.Export.Format
	}
	switch format {
	case config.FormatCSV, config.FormatJSON, config.FormatSQLite:
	default:
		return ExportResult{}, apperrors.NewExportError(fmt.Sprintf("unknown format %q", format), apperrors.ErrUnknownFormat)
	}

	root := rootOrSentinel(req.Root)
	rows := flatten.FlattenForExport(req.Doc, req.Mapping, root,
		flatten.WithListSeparator(e.cfg.Export.ListSeparator))
	path := export.ResolveOutputPath(e.cfg.OutputDir(), req.FileName, export.Extension(format), defaultExportName)
	headers := req.Mapping.Headers()

	var err error
	switch format {
	case config.FormatCSV:
		err = writeFile(path, func(w io.Writer) error {
			return export.WriteCSV(w, headers, rows)
		})
	case config.FormatJSON:
		err = writeFile(path, func(w io.Writer) error {
			return export.WriteJSON(w, export.RowsValue(rows), e.cfg.Indent())
		})
	case config.FormatSQLite:
		if err = export.WriteSQLite(ctx, path, e.cfg.Export.SQLiteTable, headers, rows); err != nil {
			_ = os.Remove(path)
		}
	}
	if err != nil {
		e.logger.Error("export failed", "path", path, "format", format, "error", err)
		return ExportResult{}, apperrors.NewExportError(err.Error(), err)
	}

	e.logger.Info("export complete", "path", path, "format", format, "rows", len(rows), "root", root)
	return ExportResult{
		Path:   path,
		Rows:   len(rows),
		Status: fmt.Sprintf("Export successful! Saved to %s", path),
	}, nil
}

func rootOrSentinel(root string) string {
	if root == "" {
		return pathutil.RootSentinel
	}
	return root
}

// writeFile creates path and hands a buffered writer to write. The file is
// removed again when writing fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return err
	}
	return bw.Flush()
}
