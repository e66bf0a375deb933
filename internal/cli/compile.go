package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/ir"
	"github.com/roach88/cfdl/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Documents bool   // full documents with $metadata instead of engine documents
	Out       string // output file path
	Save      bool   // record the build in the history database
}

// CompileOutput is the JSON payload of the compile command.
type CompileOutput struct {
	BuildID   string     `json:"build_id"`
	Success   bool       `json:"success"`
	Files     []string   `json:"files"`
	Documents ir.IRArray `json:"documents,omitempty"`
	Out       string     `json:"out,omitempty"`
	Saved     bool       `json:"saved,omitempty"`
	Errors    []string   `json:"errors"`
	Warnings  []string   `json:"warnings"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a CFDL source to IR documents",
		Long: `Compile a CFDL (.cfdl) or YAML (.yaml, .yml) source and everything it
imports, then print the IR as canonical JSON.

By default each node is printed as the engine document. --documents prints
the full document including $metadata, dependencies and validation state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Documents, "documents", false, "print full documents with $metadata")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write documents to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "record the build in the history database")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Save && opts.DBPath == "" {
		return formatter.fail(ExitCommandError, ErrCodeUsage, "--save needs --db or store.path in the config file", nil)
	}

	builder, err := opts.builder()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
	}

	loaded, err := LoadSource(path)
	if err != nil {
		return formatter.fail(loadExitCode(err), loadErrorCode(err), loadMessage(err), err)
	}
	formatter.VerboseLog("Loaded %d file(s), %d definition(s)", len(loaded.Files), len(loaded.Nodes))

	res := builder.Build(ctx, loaded.Nodes)

	out := &CompileOutput{
		BuildID:   res.BuildID,
		Success:   res.Success,
		Files:     loaded.Files,
		Documents: documents(res.Nodes, opts.Documents),
		Errors:    nonNil(res.Errors),
		Warnings:  nonNil(res.Warnings),
	}

	if opts.Save {
		if err := saveBuild(ctx, opts.DBPath, path, res); err != nil {
			return formatter.fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		out.Saved = true
		formatter.VerboseLog("Saved build %s to %s", res.BuildID, opts.DBPath)
	}

	if opts.Out != "" {
		if err := writeDocuments(opts.Out, out.Documents); err != nil {
			return formatter.fail(ExitFailure, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), err)
		}
		out.Out = opts.Out
	}

	if err := outputCompile(formatter, out, res); err != nil {
		return err
	}
	if !res.Success {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: build failed with %d error(s)", ErrCodeBuildFailed, len(res.Errors)))
	}
	return nil
}

func outputCompile(f *OutputFormatter, out *CompileOutput, res *compiler.Result) error {
	if f.json() {
		if !out.Success {
			return f.Failure(ErrCodeBuildFailed, fmt.Sprintf("build failed with %d error(s)", len(out.Errors)), out)
		}
		return f.Success(out)
	}

	w := f.Writer
	if out.Out == "" {
		data, err := indentCanonical(out.Documents)
		if err != nil {
			return f.fail(ExitFailure, ErrCodeWriteFailed, fmt.Sprintf("rendering documents: %v", err), err)
		}
		fmt.Fprintln(w, string(data))
	}

	// Diagnostics go to stderr so stdout stays valid JSON.
	ew := f.GetErrWriter()
	for _, msg := range out.Errors {
		fmt.Fprintf(ew, "error: %s\n", msg)
	}
	for _, msg := range out.Warnings {
		fmt.Fprintf(ew, "warning: %s\n", msg)
	}
	if out.Out != "" {
		fmt.Fprintf(w, "Wrote %d document(s) to %s\n", len(out.Documents), out.Out)
	}
	if out.Saved {
		fmt.Fprintf(w, "Saved build %s\n", out.BuildID)
	}
	f.VerboseLog("%s", res.Summary())
	return nil
}

// documents renders top-level nodes in source order. The engine only
// receives valid nodes; full documents cover every node and carry their
// validity in $metadata.
func documents(nodes []ir.Node, full bool) ir.IRArray {
	docs := make(ir.IRArray, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case full:
			docs = append(docs, ir.Document(n))
		case n.Common().Valid():
			docs = append(docs, ir.EngineDocument(n))
		}
	}
	return docs
}

// writeDocuments writes canonical JSON, the same bytes the content hashes
// are computed over.
func writeDocuments(path string, docs ir.IRArray) error {
	data, err := ir.MarshalCanonical(docs)
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func indentCanonical(v ir.IRValue) ([]byte, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling IR: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func saveBuild(ctx context.Context, dbPath, source string, res *compiler.Result) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.WriteBuild(ctx, source, res)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
