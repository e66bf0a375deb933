package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cfdl/internal/compiler"
)

// Scenario defines a conformance scenario: CFDL sources, the build options
// to compile them with, and what the build must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Sources lists CFDL or YAML files, relative to the scenario file.
	// They are parsed in order; imports are not followed.
	Sources []string `yaml:"sources,omitempty"`

	// Source is inline CFDL, parsed after Sources.
	Source string `yaml:"source,omitempty"`

	// Options are passed to the builder.
	Options Options `yaml:"options,omitempty"`

	// Expect checks the build as a whole.
	Expect Expect `yaml:"expect"`

	// Assertions check individual nodes and findings.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Options mirrors the build settings of the config file.
type Options struct {
	Unresolved  string `yaml:"unresolved,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	SchemaCheck bool   `yaml:"schemaCheck,omitempty"`
}

// Expect checks the build as a whole. Nil fields are not checked; Errors
// and Warnings, when present, must match exactly and in order.
type Expect struct {
	Success  *bool    `yaml:"success"`
	Nodes    *int     `yaml:"nodes,omitempty"`
	Errors   []string `yaml:"errors,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
}

// Assertion checks one node or finding.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Node is the id of the node under test. Embedded children count.
	Node string `yaml:"node,omitempty"`

	// Field and Value are used by meta_equals and document_equals.
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Contains is a substring of a message (node_invalid, error_contains,
	// warning_contains).
	Contains string `yaml:"contains,omitempty"`

	// IDs is used by depends_on (subset) and unresolved (exact).
	IDs []string `yaml:"ids,omitempty"`

	// Path is the expected cycle for the cycle assertion.
	Path []string `yaml:"path,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeValid       = "node_valid"
	AssertNodeInvalid     = "node_invalid"
	AssertMetaEquals      = "meta_equals"
	AssertDocumentEquals  = "document_equals"
	AssertDependsOn       = "depends_on"
	AssertUnresolved      = "unresolved"
	AssertCycle           = "cycle"
	AssertErrorContains   = "error_contains"
	AssertWarningContains = "warning_contains"
)

// LoadScenario reads and parses a scenario YAML file. Source paths are
// resolved relative to the scenario file. Unknown fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, src := range scenario.Sources {
		if !filepath.IsAbs(src) {
			scenario.Sources[i] = filepath.Join(base, src)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		names[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Sources) == 0 && s.Source == "" {
		return fmt.Errorf("sources or source is required")
	}
	for _, path := range s.Sources {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", path)
		}
	}
	if _, err := compiler.ParseSeverity(s.Options.Unresolved); err != nil {
		return fmt.Errorf("options.unresolved: %w", err)
	}
	if s.Options.Workers < 0 {
		return fmt.Errorf("options.workers must not be negative")
	}
	if s.Expect.Success == nil {
		return fmt.Errorf("expect.success is required")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	need := func(ok bool, what string) error {
		if !ok {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, what, a.Type)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNodeValid, AssertNodeInvalid:
		return need(a.Node != "", "node")
	case AssertMetaEquals, AssertDocumentEquals:
		if err := need(a.Node != "", "node"); err != nil {
			return err
		}
		return need(a.Field != "", "field")
	case AssertDependsOn:
		if err := need(a.Node != "", "node"); err != nil {
			return err
		}
		return need(len(a.IDs) > 0, "ids")
	case AssertUnresolved:
		return nil
	case AssertCycle:
		return need(len(a.Path) > 1, "path")
	case AssertErrorContains, AssertWarningContains:
		return need(a.Contains != "", "contains")
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}
