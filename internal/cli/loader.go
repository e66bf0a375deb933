package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/parser"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Source or import not found
	ErrCodeSyntax        = "E003" // Parse failure
	ErrCodeImportCycle   = "E004" // Import cycle
	ErrCodeWriteFailed   = "E005" // Output file write error
	ErrCodeStore         = "E006" // Build history error
	ErrCodeConfig        = "E007" // Config file error
	ErrCodeUsage         = "E008" // Invalid flag combination
	ErrCodeBuildFailed   = "E100" // Build finished with errors
	ErrCodeBuildNotFound = "E101" // Unknown build id in history
)

// LoadResult is a source file with all of its imports, parsed and turned
// into AST nodes.
type LoadResult struct {
	// Files lists every loaded file in the order its definitions appear in
	// Nodes: imports before the files that import them.
	Files []string
	Nodes []*ast.Node
}

// LoadError is a failure to load one file. Message carries the location.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error

	// Entry is set when the file that failed is the one named on the
	// command line rather than an import.
	Entry bool
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadSource parses path and, depth first, every file it imports. Import
// paths are relative to the importing file. Each file is loaded once even
// when several files import it; an import cycle is an error.
func LoadSource(path string) (*LoadResult, error) {
	l := &loader{
		done:     make(map[string]bool),
		visiting: make(map[string]bool),
		result:   &LoadResult{},
	}
	if err := l.load(path, nil); err != nil {
		return nil, err
	}
	return l.result, nil
}

type loader struct {
	done     map[string]bool
	visiting map[string]bool
	stack    []string
	result   *LoadResult
}

func (l *loader) load(path string, from *parser.Import) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}
	if l.done[abs] {
		return nil
	}
	if l.visiting[abs] {
		return &LoadError{
			Code:    ErrCodeImportCycle,
			Path:    path,
			Message: "import cycle: " + strings.Join(append(l.stack, path), " -> "),
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		code, msg := ErrCodeGeneric, err.Error()
		if errors.Is(err, os.ErrNotExist) {
			code, msg = ErrCodeNotFound, "file not found: "+path
			if from != nil {
				msg = fmt.Sprintf("%s: import %q not found", from.Pos, from.Path)
			}
		}
		return &LoadError{Code: code, Path: path, Message: msg, Err: err, Entry: from == nil}
	}

	file, err := parseFile(path, src)
	if err != nil {
		return &LoadError{Code: ErrCodeSyntax, Path: path, Message: err.Error(), Err: err}
	}

	l.visiting[abs] = true
	l.stack = append(l.stack, path)
	for _, imp := range file.Imports {
		target := imp.Path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		if err := l.load(target, imp); err != nil {
			return err
		}
	}
	l.stack = l.stack[:len(l.stack)-1]
	delete(l.visiting, abs)
	l.done[abs] = true

	l.result.Files = append(l.result.Files, path)
	l.result.Nodes = append(l.result.Nodes, ast.Build(file)...)
	return nil
}

// parseFile picks the front end by extension: .yaml and .yml use the YAML
// form, anything else the CFDL grammar.
func parseFile(path string, src []byte) (*parser.File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parser.ParseYAML(path, src)
	default:
		return parser.Parse(path, src)
	}
}

// loadExitCode maps a load failure to an exit code. A missing entry file
// is a usage error; everything else is a failed compile.
func loadExitCode(err error) int {
	var le *LoadError
	if errors.As(err, &le) && le.Code == ErrCodeNotFound && le.Entry {
		return ExitCommandError
	}
	return ExitFailure
}

func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}

func loadMessage(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}
