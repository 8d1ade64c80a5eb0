package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonassist/internal/analyzer"
	"github.com/mcncl/jsonassist/internal/errors"
	"github.com/mcncl/jsonassist/internal/generator"
	"github.com/mcncl/jsonassist/internal/program"
)

// Output modes.
const (
	ModeAccess    = "access"
	ModeParse     = "parse"
	ModeSerialize = "serialize"
)

// Config represents the complete configuration for jsonassist
type Config struct {
	Mode            string                `yaml:"mode"`
	Target          TargetConfig          `yaml:"target"`
	Analysis        AnalysisConfig        `yaml:"analysis"`
	Naming          NamingConfig          `yaml:"naming"`
	Comments        CommentsConfig        `yaml:"comments"`
	Deserialization DeserializationConfig `yaml:"deserialization"`
	Formatting      FormattingConfig      `yaml:"formatting"`
	Dev             DevConfig             `yaml:"dev"`
}

// TargetConfig describes the program the generated code lives in
type TargetConfig struct {
	Serial     bool   `yaml:"serial"`
	Progmem    bool   `yaml:"progmem"`
	InputType  string `yaml:"input_type"`
	OutputType string `yaml:"output_type"`
}

// AnalysisConfig tunes the record/map decision
type AnalysisConfig struct {
	MinMapKeys     int               `yaml:"min_map_keys"`
	KeyStability   float64           `yaml:"key_stability"`
	AliasMinFields int               `yaml:"alias_min_fields"`
	Overrides      map[string]string `yaml:"overrides"`

	// parsed overrides (not serialized)
	shapes map[string]analyzer.Shape
}

// NamingConfig controls variable naming
type NamingConfig struct {
	SnakeCase     bool              `yaml:"snake_case"`
	FieldMappings map[string]string `yaml:"field_mappings"`
}

// CommentsConfig controls example-value comments
type CommentsConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxWidth int  `yaml:"max_width"`
}

// DeserializationConfig controls the deserializeJson options of parsing programs
type DeserializationConfig struct {
	DefaultNestingLimit int  `yaml:"default_nesting_limit"`
	NestingLimit        *int `yaml:"nesting_limit"`
	AutoNestingLimit    bool `yaml:"auto_nesting_limit"`
}

// FormattingConfig controls code formatting options
type FormattingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Indent       int    `yaml:"indent"`
	UseTabs      bool   `yaml:"use_tabs"`
	WrapFunction string `yaml:"wrap_function"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	policy := analyzer.DefaultPolicy()
	return &Config{
		Mode: ModeAccess,
		Analysis: AnalysisConfig{
			MinMapKeys:     policy.MinMapKeys,
			KeyStability:   policy.KeyStability,
			AliasMinFields: policy.AliasMinFields,
			Overrides:      make(map[string]string),
		},
		Naming: NamingConfig{
			SnakeCase:     false,
			FieldMappings: make(map[string]string),
		},
		Comments: CommentsConfig{
			Enabled:  true,
			MaxWidth: generator.DefaultMaxWidth,
		},
		Deserialization: DeserializationConfig{
			DefaultNestingLimit: program.DefaultNestingLimit,
			AutoNestingLimit:    true,
		},
		Formatting: FormattingConfig{
			Enabled: true,
			Indent:  2,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonassist.yml", ".jsonassist.yaml", "jsonassist.yml", "jsonassist.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks every enumerated setting and parses the shape overrides.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAccess, ModeParse, ModeSerialize:
	default:
		return fmt.Errorf("%w %q (want %s, %s or %s)", errors.ErrUnknownMode, c.Mode, ModeAccess, ModeParse, ModeSerialize)
	}

	if _, err := program.ParseInputType(c.Target.InputType); err != nil {
		return err
	}
	if _, err := program.ParseOutputType(c.Target.OutputType); err != nil {
		return err
	}

	shapes := make(map[string]analyzer.Shape, len(c.Analysis.Overrides))
	for path, name := range c.Analysis.Overrides {
		shape, err := analyzer.ParseShape(name)
		if err != nil {
			return fmt.Errorf("invalid override for '%s': %w", path, err)
		}
		shapes[path] = shape
	}
	c.Analysis.shapes = shapes

	if err := c.Policy().Validate(); err != nil {
		return err
	}

	if c.Deserialization.DefaultNestingLimit <= 0 {
		return fmt.Errorf("default_nesting_limit: %w", errors.ErrInvalidNestingLimit)
	}
	if c.Formatting.Indent < 0 {
		return fmt.Errorf("formatting indent must not be negative, got %d", c.Formatting.Indent)
	}
	return nil
}

// Policy returns the record/map policy for the analyzer.
func (c *Config) Policy() analyzer.Policy {
	overrides := c.Analysis.shapes
	if overrides == nil {
		overrides = make(map[string]analyzer.Shape, len(c.Analysis.Overrides))
		for path, name := range c.Analysis.Overrides {
			// Validate reports the invalid ones.
			if shape, err := analyzer.ParseShape(name); err == nil {
				overrides[path] = shape
			}
		}
	}
	return analyzer.Policy{
		MinMapKeys:     c.Analysis.MinMapKeys,
		KeyStability:   c.Analysis.KeyStability,
		AliasMinFields: c.Analysis.AliasMinFields,
		Overrides:      overrides,
	}
}

// NamingRules returns the identifier rules for the analyzer.
func (c *Config) NamingRules() analyzer.Naming {
	return analyzer.Naming{
		SnakeCase:     c.Naming.SnakeCase,
		FieldMappings: c.Naming.FieldMappings,
	}
}

// EmitterOptions returns the comment settings for the generator.
func (c *Config) EmitterOptions() generator.Options {
	return generator.Options{
		Comments: c.Comments.Enabled,
		MaxWidth: c.Comments.MaxWidth,
	}
}

// InputType returns the parsed target input type. It assumes Validate passed.
func (c *Config) InputType() program.InputType {
	t, _ := program.ParseInputType(c.Target.InputType)
	return t
}

// OutputType returns the parsed target output type. It assumes Validate passed.
func (c *Config) OutputType() program.OutputType {
	t, _ := program.ParseOutputType(c.Target.OutputType)
	return t
}

// Overrides holds the settings given on the command line. Zero values mean
// "not given"; boolean switches can only turn a setting on, except NoFormat.
type Overrides struct {
	Mode             string
	InputType        string
	OutputType       string
	Serial           bool
	Progmem          bool
	NestingLimit     *int
	AutoNestingLimit bool
	NoFormat         bool
	Wrap             string
	Debug            bool
}

// MergeConfigs applies CLI overrides on top of a base config and returns
// the result. base is not modified.
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base

	if override.Mode != "" {
		merged.Mode = override.Mode
	}
	if override.InputType != "" {
		merged.Target.InputType = override.InputType
	}
	if override.OutputType != "" {
		merged.Target.OutputType = override.OutputType
	}
	if override.Serial {
		merged.Target.Serial = true
	}
	if override.Progmem {
		merged.Target.Progmem = true
	}
	if override.NestingLimit != nil {
		limit := *override.NestingLimit
		merged.Deserialization.NestingLimit = &limit
	}
	if override.AutoNestingLimit {
		merged.Deserialization.AutoNestingLimit = true
	}
	if override.NoFormat {
		merged.Formatting.Enabled = false
	}
	if override.Wrap != "" {
		merged.Formatting.WrapFunction = override.Wrap
	}
	if override.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence: command line
// over config file over defaults.
func LoadConfigWithCLI(configPath string, override Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
