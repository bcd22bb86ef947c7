package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcncl/jsonshaper/internal/config"
	apperrors "github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/export"
	"github.com/mcncl/jsonshaper/internal/merge"
	"github.com/mcncl/jsonshaper/internal/models"
)

// Labels used in merge load messages.
const (
	PrimaryLabel   = "Primary dataset"
	SecondaryLabel = "Secondary dataset"
)

// MergeRequest describes an inner join of two documents.
type MergeRequest struct {
	Primary       models.JSONValue
	Secondary     models.JSONValue
	PrimaryRoot   string
	SecondaryRoot string
	JoinKeys      []string
	// FileName names the merged output; a random name is used when blank.
	FileName string
}

// MergeOutcome is a written merge with its summary and preview.
type MergeOutcome struct {
	Path    string
	Summary string
	Preview []*models.JSONObject
	Stats   merge.Stats
	Grouped bool
}

// Merger joins two datasets and writes the merged document as JSON.
type Merger struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewMerger creates a Merger. A nil logger discards output.
func NewMerger(cfg *config.Config, logger *slog.Logger) *Merger {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{cfg: cfg, logger: logger}
}

// Merge performs the join and writes the primary document with its record
// list replaced by the merged records. Nothing is written when the join
// fails or a flat merge matches no pairs; a grouped merge always keeps one
// list per primary group.
func (m *Merger) Merge(_ context.Context, req MergeRequest) (MergeOutcome, error) {
	opts := []merge.Option{merge.WithLogger(m.logger)}
	if m.cfg.Merge.UnicodeNormalize {
		opts = append(opts, merge.WithUnicodeNormalization())
	}

	primaryRoot := rootOrSentinel(req.PrimaryRoot)
	secondaryRoot := rootOrSentinel(req.SecondaryRoot)
	res, err := merge.Perform(req.Primary, req.Secondary, primaryRoot, secondaryRoot, req.JoinKeys, opts...)
	if err != nil {
		return MergeOutcome{}, err
	}
	if res.Empty() {
		return MergeOutcome{}, apperrors.NewMergeError("Merge produced no rows.", apperrors.ErrEmptyMerge)
	}

	container := merge.BuildMergedOutputContainer(req.Primary, primaryRoot, res.Payload)
	path := export.ResolveOutputPath(m.cfg.OutputDir(), mergedFileName(req.FileName), ".json", "")
	err = writeFile(path, func(w io.Writer) error {
		return export.WriteJSON(w, container, m.cfg.Indent())
	})
	if err != nil {
		m.logger.Error("writing merged file failed", "path", path, "error", err)
		return MergeOutcome{}, apperrors.NewOutputError(fmt.Sprintf("Error writing merged file: %v", err), err)
	}

	m.logger.Info("merge written", "path", path, "matches", res.Stats.MatchPairs, "grouped", res.Grouped)
	return MergeOutcome{
		Path:    path,
		Summary: res.Stats.Summary(),
		Preview: merge.PreviewRecords(res.Payload, res.Grouped, m.cfg.Merge.PreviewLimit),
		Stats:   res.Stats,
		Grouped: res.Grouped,
	}, nil
}

func mergedFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "merged_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return name
}
