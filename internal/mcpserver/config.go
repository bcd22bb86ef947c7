package mcpserver

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/mcncl/jsonshaper/internal/config"
)

// serverConfig holds the MCP server defaults read from JSONSHAPER_* env vars.
type serverConfig struct {
	PreviewLimit     int
	MaxPreviewLimit  int
	OutputDir        string
	NameStyle        string
	SampleSize       int
	UnicodeNormalize bool
	MaxContentBytes  int
}

// loadConfig reads configuration from JSONSHAPER_* environment variables.
// Invalid values log a warning and fall back to the default.
func loadConfig() *serverConfig {
	return &serverConfig{
		PreviewLimit:     envInt("JSONSHAPER_PREVIEW_LIMIT", 3),
		MaxPreviewLimit:  envInt("JSONSHAPER_MAX_PREVIEW_LIMIT", 100),
		OutputDir:        os.Getenv("JSONSHAPER_OUTPUT_DIR"),
		NameStyle:        os.Getenv("JSONSHAPER_NAME_STYLE"),
		SampleSize:       envInt("JSONSHAPER_SAMPLE_SIZE", 50),
		UnicodeNormalize: envBool("JSONSHAPER_UNICODE_NORMALIZE", false),
		MaxContentBytes:  envInt("JSONSHAPER_MAX_CONTENT_BYTES", 32<<20),
	}
}

// apply layers the env settings over base. Unset values keep base.
func (c *serverConfig) apply(base *config.Config) *config.Config {
	out := *base
	out.Preview.Limit = c.PreviewLimit
	out.Merge.PreviewLimit = c.PreviewLimit
	out.Merge.SampleSize = c.SampleSize
	if c.OutputDir != "" {
		out.Export.OutputDir = c.OutputDir
	}
	if c.NameStyle != "" {
		out.Naming.Style = c.NameStyle
	}
	if c.UnicodeNormalize {
		out.Merge.UnicodeNormalize = true
	}
	return &out
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
