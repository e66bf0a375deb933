// Package config loads the optional .cfdl.yaml project file.
//
// Every setting has a default, so a missing file is not an error. Command
// line flags override whatever the file says.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = ".cfdl.yaml"

// Config is the decoded project file.
type Config struct {
	Build  Build  `yaml:"build"`
	Output Output `yaml:"output"`
	Store  Store  `yaml:"store"`
}

// Build holds compiler settings.
type Build struct {
	// Unresolved is the severity of references to unknown ids.
	Unresolved Severity `yaml:"unresolved"`

	// Workers bounds parallel transform and validation. 0 and 1 run
	// sequentially.
	Workers int `yaml:"workers"`

	// SchemaCheck runs the CUE schema check over engine documents.
	SchemaCheck bool `yaml:"schemaCheck"`
}

// Output holds CLI presentation settings.
type Output struct {
	Format Format `yaml:"format"`
}

// Store holds build history settings. An empty Path disables history.
type Store struct {
	Path string `yaml:"path"`
}

// Severity is "warning" or "error".
type Severity string

// Format is "text" or "json".
type Format string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"

	FormatText Format = "text"
	FormatJSON Format = "json"
)

// UnmarshalYAML rejects values other than warning and error.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, (*string)(s), string(SeverityWarning), string(SeverityError))
}

// UnmarshalYAML rejects values other than text and json.
func (f *Format) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, (*string)(f), string(FormatText), string(FormatJSON))
}

func decodeEnum(value *yaml.Node, dst *string, allowed ...string) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if !slices.Contains(allowed, s) {
		return fmt.Errorf("line %d: %q must be one of: %s", value.Line, s, strings.Join(allowed, ", "))
	}
	*dst = s
	return nil
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Build:  Build{Unresolved: SeverityWarning},
		Output: Output{Format: FormatText},
	}
}

// Load reads the file at path over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Discover loads DefaultFileName from dir. It returns the defaults and an
// empty path when the file does not exist.
func Discover(dir string) (*Config, string, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (c *Config) validate() error {
	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers must not be negative, got %d", c.Build.Workers)
	}
	return nil
}
