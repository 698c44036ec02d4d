// =============================================================================
// Fiscal Normalizer - Configuration
// =============================================================================
//
// Two configuration sources are used:
//
//   1. MAIN CONFIGURATION (config.yaml + FISCALNORM_* environment)
//      Directories, output format, source encoding, logging and
//      concurrency. Loaded with viper so every key can be overridden from the
//      environment, e.g. FISCALNORM_OUTPUT_FORMAT=xlsx.
//
//   2. POLICY FILE (policy.yaml, optional)
//      The token lists that drive value selection and document-type
//      classification. Missing lists fall back to the built-in defaults.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/doctype"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FISCALNORM"

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// Supported source encodings for tabular inputs.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin1"
	EncodingWindows1252 = "windows-1252"
)

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig holds the global application settings.
type MainConfig struct {
	// InputDir is scanned for .xml, .csv and .xlsx sources.
	InputDir string `mapstructure:"input_dir"`

	// OutputDir receives the normalized table and reports.
	OutputDir string `mapstructure:"output_dir"`

	// ArchiveDir receives processed inputs when ArchiveOnSuccess is set.
	ArchiveDir string `mapstructure:"archive_dir"`

	// LogDir receives the summary and error logs of each run.
	LogDir string `mapstructure:"log_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// OutputFormat is one of csv, json, xlsx, xml.
	OutputFormat string `mapstructure:"output_format"`

	// OutputNameFormat supports {uuid}, {timestamp} and {date}. The format's
	// extension is appended when missing.
	OutputNameFormat string `mapstructure:"output_name_format"`

	// SourceEncoding applies to CSV inputs: utf-8, latin1 or windows-1252.
	SourceEncoding string `mapstructure:"source_encoding"`

	// CSVDelimiter is sniffed from the header line when empty.
	CSVDelimiter string `mapstructure:"csv_delimiter"`

	// XLSXSheet selects the sheet read from XLSX inputs; empty means first.
	XLSXSheet string `mapstructure:"xlsx_sheet"`

	Recursive        bool   `mapstructure:"recursive"`
	MaxConcurrency   int    `mapstructure:"max_concurrency"`
	ContinueOnError  bool   `mapstructure:"continue_on_error"`
	ArchiveOnSuccess bool   `mapstructure:"archive_on_success"`
	PolicyFile       string `mapstructure:"policy_file"`
}

// Load reads the main configuration. An empty path loads defaults and
// environment overrides only.
func Load(configPath string) (*MainConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("archive_dir", "./archive")
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("output_format", FormatCSV)
	v.SetDefault("output_name_format", "notas_{timestamp}")
	v.SetDefault("source_encoding", EncodingUTF8)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("xlsx_sheet", "")
	v.SetDefault("recursive", false)
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("archive_on_success", false)
	v.SetDefault("policy_file", "")
}

func normalize(cfg *MainConfig) {
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	switch strings.ToLower(strings.TrimSpace(cfg.SourceEncoding)) {
	case "", "utf8", "utf-8":
		cfg.SourceEncoding = EncodingUTF8
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		cfg.SourceEncoding = EncodingLatin1
	case "windows-1252", "cp1252":
		cfg.SourceEncoding = EncodingWindows1252
	}

	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
}

// Validate checks field values. It does not touch the filesystem.
func (c *MainConfig) Validate() error {
	switch c.OutputFormat {
	case FormatCSV, FormatJSON, FormatXLSX, FormatXML:
	default:
		return fmt.Errorf("unsupported output_format %q (expected csv, json, xlsx or xml)", c.OutputFormat)
	}

	switch c.SourceEncoding {
	case EncodingUTF8, EncodingLatin1, EncodingWindows1252:
	default:
		return fmt.Errorf("unsupported source_encoding %q", c.SourceEncoding)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}

	if len([]rune(c.CSVDelimiter)) > 1 {
		return fmt.Errorf("csv_delimiter must be a single character, got %q", c.CSVDelimiter)
	}

	return nil
}

// EnsureDirectories creates the output, log and (when archiving) archive
// directories.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.OutputDir, c.LogDir}
	if c.ArchiveOnSuccess {
		dirs = append(dirs, c.ArchiveDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// POLICY FILE
// =============================================================================

// Policy groups the data-driven heuristics of the pipeline.
type Policy struct {
	Value         aggregator.Policy    `yaml:"value"`
	DocumentTypes doctype.Fingerprints `yaml:"document_types"`
}

// DefaultPolicy returns the built-in heuristics.
func DefaultPolicy() *Policy {
	return &Policy{
		Value:         aggregator.DefaultPolicy(),
		DocumentTypes: doctype.DefaultFingerprints(),
	}
}

// LoadPolicy reads a policy file. An empty path returns DefaultPolicy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	p.Value = p.Value.WithDefaults()
	p.DocumentTypes = p.DocumentTypes.WithDefaults()

	return &p, nil
}

// Marshal renders the policy as YAML.
func (p *Policy) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
