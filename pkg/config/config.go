package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Config holds all configuration options for codeline.
type Config struct {
	// Directory holding the sources to check, relative to the working directory.
	SourceDir string `koanf:"source_dir" toml:"source_dir" yaml:"source_dir" json:"source_dir"`

	// Reported paths are relative to this directory. Empty means the working directory.
	ReportRoot string `koanf:"report_root" toml:"report_root" yaml:"report_root" json:"report_root"`

	// Rules
	Patterns      []string     `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Classes       []string     `koanf:"classes" toml:"classes" yaml:"classes" json:"classes"`
	CheckPrivates bool         `koanf:"check_privates" toml:"check_privates" yaml:"check_privates" json:"check_privates"`
	Unused        UnusedConfig `koanf:"unused" toml:"unused" yaml:"unused" json:"unused"`

	Walk WalkConfig `koanf:"walk" toml:"walk" yaml:"walk" json:"walk"`

	// Worker count for the per-file pass. Zero picks a default from the CPU count.
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`

	// Deadline for a whole run as a Go duration, e.g. "2m". Empty means none.
	Timeout string `koanf:"timeout" toml:"timeout" yaml:"timeout" json:"timeout"`

	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// UnusedConfig tunes the unused-member rule.
type UnusedConfig struct {
	PublicMethods         bool     `koanf:"public_methods" toml:"public_methods" yaml:"public_methods" json:"public_methods"`
	SerializationFields   []string `koanf:"serialization_fields" toml:"serialization_fields" yaml:"serialization_fields" json:"serialization_fields"`
	SuppressionAnnotation string   `koanf:"suppression_annotation" toml:"suppression_annotation" yaml:"suppression_annotation" json:"suppression_annotation"`
	SuppressionValue      string   `koanf:"suppression_value" toml:"suppression_value" yaml:"suppression_value" json:"suppression_value"`
	AccessorPattern       string   `koanf:"accessor_pattern" toml:"accessor_pattern" yaml:"accessor_pattern" json:"accessor_pattern"`
	TestNamespaces        []string `koanf:"test_namespaces" toml:"test_namespaces" yaml:"test_namespaces" json:"test_namespaces"`
}

// WalkConfig prunes the source tree walk. Both settings are opt-in.
type WalkConfig struct {
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
	Exclude   []string `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"` // doublestar globs
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SourceDir: filepath.Join("src", "main", "java"),
		Unused: UnusedConfig{
			PublicMethods:         true,
			SerializationFields:   []string{"serialVersionUID"},
			SuppressionAnnotation: "SuppressWarnings",
			SuppressionValue:      "unusedMember",
			AccessorPattern:       `^(get|set|is)[A-Z0-9_$]`,
			TestNamespaces: []string{
				"org.junit",
				"org.junit.jupiter.api",
				"org.testng.annotations",
			},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

//go:embed schema.json
var schemaJSON string

// ConfigNames are the file names searched by LoadConfig, in order.
var ConfigNames = []string{
	"codeline.toml",
	"codeline.yaml",
	"codeline.yml",
	"codeline.json",
	".codeline.toml",
	".codeline.yaml",
	".codeline.yml",
	".codeline.json",
}

// SearchDirs are the directories searched by LoadConfig, in order.
var SearchDirs = []string{".", ".codeline"}

// Load loads configuration from a file, validates it and fills the gaps
// with defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithPath loads the given file instead of searching the standard locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	Source string // empty when defaults were used
}

// LoadConfig loads the explicit path if given, otherwise the first config
// file found in the standard locations, otherwise the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path, ok := Find(); ok {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// Find returns the first existing config file in the standard locations.
func Find() (string, bool) {
	for _, dir := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// Validate checks values the schema cannot: regular expressions, globs and
// the timeout. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	for _, expr := range c.Patterns {
		if _, err := regexp.Compile(expr); err != nil {
			errs = append(errs, fmt.Errorf("patterns: %w", err))
		}
	}
	for _, expr := range c.Classes {
		if _, err := regexp.Compile(`^(?:` + expr + `)$`); err != nil {
			errs = append(errs, fmt.Errorf("classes: %w", err))
		}
	}
	if _, err := regexp.Compile(c.Unused.AccessorPattern); err != nil {
		errs = append(errs, fmt.Errorf("unused.accessor_pattern: %w", err))
	}
	for _, glob := range c.Walk.Exclude {
		if !doublestar.ValidatePattern(glob) {
			errs = append(errs, fmt.Errorf("walk.exclude: invalid glob %q", glob))
		}
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout. Zero means no deadline.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout: must not be negative, got %s", c.Timeout)
	}
	return d, nil
}

// ShouldExclude checks if a path, relative to the source root and using
// forward slashes, matches one of the walk.exclude globs.
func (c *Config) ShouldExclude(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, glob := range c.Walk.Exclude {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}

func validateSchema(raw map[string]any) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so parser-specific value types (TOML integers,
	// dates) reach the validator as plain JSON values.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode config for validation: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("codeline.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to load config schema: %w", err)
	}
	return c.Compile("codeline.schema.json")
}
