package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mcncl/jsonshaper/internal/flatten"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the exporter
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Config represents the complete configuration for jsonshaper
type Config struct {
	RootPath  string          `yaml:"root_path"`
	Preview   PreviewConfig   `yaml:"preview"`
	Export    ExportConfig    `yaml:"export"`
	Naming    NamingConfig    `yaml:"naming"`
	Selection SelectionConfig `yaml:"selection"`
	Merge     MergeConfig     `yaml:"merge"`
	Profile   ProfileConfig   `yaml:"profile"`
	Dev       DevConfig       `yaml:"dev"`
}

// PreviewConfig controls the preview table
type PreviewConfig struct {
	Limit int `yaml:"limit"`
}

// ExportConfig controls export output
type ExportConfig struct {
	Format        string `yaml:"format"`
	OutputDir     string `yaml:"output_dir"`
	ListSeparator string `yaml:"list_separator"`
	JSONIndent    int    `yaml:"json_indent"`
	SQLiteTable   string `yaml:"sqlite_table"`
}

// NamingConfig controls output column naming
type NamingConfig struct {
	Style         string            `yaml:"style"`
	FieldMappings map[string]string `yaml:"field_mappings"`
}

// SelectionConfig controls which fields "select all" picks
type SelectionConfig struct {
	Exclude []FieldPattern `yaml:"exclude"`
}

// FieldPattern is a regular expression matched against field paths
type FieldPattern struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// MergeConfig controls dataset merging
type MergeConfig struct {
	SampleSize       int  `yaml:"sample_size"`
	PreviewLimit     int  `yaml:"preview_limit"`
	UnicodeNormalize bool `yaml:"unicode_normalize"`
}

// ProfileConfig controls field profiling
type ProfileConfig struct {
	SampleSize int `yaml:"sample_size"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RootPath: "",
		Preview: PreviewConfig{
			Limit: 3,
		},
		Export: ExportConfig{
			Format:        FormatCSV,
			OutputDir:     "",
			ListSeparator: flatten.DefaultListSeparator,
			JSONIndent:    2,
			SQLiteTable:   "records",
		},
		Naming: NamingConfig{
			Style:         string(flatten.StyleNone),
			FieldMappings: make(map[string]string),
		},
		Selection: SelectionConfig{
			Exclude: []FieldPattern{},
		},
		Merge: MergeConfig{
			SampleSize:       50,
			PreviewLimit:     3,
			UnicodeNormalize: false,
		},
		Profile: ProfileConfig{
			SampleSize: 0,
		},
		Dev: DevConfig{
			Debug:   false,
			Verbose: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Compile regex patterns
	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonshaper.yml", ".jsonshaper.yaml", "jsonshaper.yml", "jsonshaper.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Selection.Exclude {
		p := &c.Selection.Exclude[i]
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", p.Pattern, err)
		}
		p.regex = regex
	}
	return nil
}

// MatchesField checks if this pattern matches the given field path
func (fp *FieldPattern) MatchesField(path string) bool {
	if fp.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(fp.Pattern)
		if err != nil {
			return false
		}
		fp.regex = regex
	}
	return fp.regex.MatchString(path)
}

// Validate checks that every setting holds a usable value
func (c *Config) Validate() error {
	switch c.Export.Format {
	case FormatCSV, FormatJSON, FormatSQLite:
	default:
		return fmt.Errorf("export.format must be one of csv, json, sqlite, got %q", c.Export.Format)
	}
	if _, err := flatten.ParseNameStyle(c.Naming.Style); err != nil {
		return fmt.Errorf("naming.style: %w", err)
	}
	if c.Export.JSONIndent < 0 || c.Export.JSONIndent > 8 {
		return fmt.Errorf("export.json_indent must be between 0 and 8, got %d", c.Export.JSONIndent)
	}
	if c.Export.SQLiteTable == "" {
		return fmt.Errorf("export.sqlite_table must not be empty")
	}
	if c.Merge.SampleSize < 1 {
		return fmt.Errorf("merge.sample_size must be positive, got %d", c.Merge.SampleSize)
	}
	if c.Profile.SampleSize < 0 {
		return fmt.Errorf("profile.sample_size must not be negative, got %d", c.Profile.SampleSize)
	}
	return nil
}

// IsExcluded reports whether path matches any selection exclude pattern
func (c *Config) IsExcluded(path string) bool {
	for i := range c.Selection.Exclude {
		if c.Selection.Exclude[i].MatchesField(path) {
			return true
		}
	}
	return false
}

// SelectableFields filters paths through the exclude patterns, keeping order
func (c *Config) SelectableFields(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !c.IsExcluded(p) {
			out = append(out, p)
		}
	}
	return out
}

// FieldMapping builds the output mapping for the selected paths, applying
// the naming style and then any per-path overrides
func (c *Config) FieldMapping(selected []string) (flatten.FieldMapping, error) {
	style, err := flatten.ParseNameStyle(c.Naming.Style)
	if err != nil {
		return nil, err
	}
	return flatten.NewFieldMapping(selected).WithStyle(style).WithOverrides(c.Naming.FieldMappings), nil
}

// ParseFields builds the mapping for "path" or "path=Name" specs. Explicit
// names win over configured overrides.
func (c *Config) ParseFields(specs []string) (flatten.FieldMapping, error) {
	style, err := flatten.ParseNameStyle(c.Naming.Style)
	if err != nil {
		return nil, err
	}
	m, err := flatten.ParseFieldSpecs(specs, style)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]string, len(c.Naming.FieldMappings))
	for k, v := range c.Naming.FieldMappings {
		overrides[k] = v
	}
	for _, spec := range specs {
		if path, _, explicit := strings.Cut(spec, "="); explicit {
			delete(overrides, strings.TrimSpace(path))
		}
	}
	return m.WithOverrides(overrides), nil
}

// OutputDir returns the configured export directory, or the OS temp dir
func (c *Config) OutputDir() string {
	if c.Export.OutputDir != "" {
		return c.Export.OutputDir
	}
	return os.TempDir()
}

// Indent returns the JSON indent string
func (c *Config) Indent() string {
	return strings.Repeat(" ", c.Export.JSONIndent)
}

// CLIOverrides holds values given on the command line. Empty strings and
// false leave the config value alone.
type CLIOverrides struct {
	RootPath  string
	Format    string
	OutputDir string
	Style     string
	Debug     bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.RootPath != "" {
		cfg.RootPath = cli.RootPath
	}
	if cli.Format != "" {
		cfg.Export.Format = cli.Format
	}
	if cli.OutputDir != "" {
		cfg.Export.OutputDir = cli.OutputDir
	}
	if cli.Style != "" {
		cfg.Naming.Style = cli.Style
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
