package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cfdl/internal/compiler"
)

// ValidationReport is the JSON payload of the validate command.
type ValidationReport struct {
	BuildID              string                     `json:"build_id"`
	Success              bool                       `json:"success"`
	FullyValid           bool                       `json:"fully_valid"`
	Summary              string                     `json:"summary"`
	ErrorCount           int                        `json:"error_count"`
	ValidationErrorCount int                        `json:"validation_error_count"`
	Errors               []string                   `json:"errors"`
	Warnings             []string                   `json:"warnings"`
	Issues               []compiler.ValidationError `json:"issues,omitempty"`
	Unresolved           []string                   `json:"unresolved,omitempty"`
	Cycles               []compiler.CycleWarning    `json:"cycles,omitempty"`
	Nodes                []NodeStatus               `json:"nodes"`
}

// NodeStatus is one top-level node in a ValidationReport.
type NodeStatus struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Build a CFDL source and report problems",
		Long: `Build a CFDL source and everything it imports without writing any
output, then print the build report.

Exits 0 when the source parses and the build has no errors, 1 otherwise.
Warnings never fail validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

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

	if formatter.json() {
		report := newValidationReport(res)
		if res.Success {
			err = formatter.Success(report)
		} else {
			err = formatter.Failure(ErrCodeBuildFailed, fmt.Sprintf("build failed with %d error(s)", len(res.Errors)), report)
		}
		if err != nil {
			return err
		}
	} else {
		fmt.Fprint(formatter.Writer, res.DetailedReport())
	}

	if !res.Success {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: build failed with %d error(s)", ErrCodeBuildFailed, len(res.Errors)))
	}
	return nil
}

func newValidationReport(res *compiler.Result) *ValidationReport {
	report := &ValidationReport{
		BuildID:              res.BuildID,
		Success:              res.Success,
		FullyValid:           res.FullyValid(),
		Summary:              res.Summary(),
		ErrorCount:           res.ErrorCount(),
		ValidationErrorCount: res.ValidationErrorCount(),
		Errors:               nonNil(res.Errors),
		Warnings:             nonNil(res.Warnings),
		Issues:               res.Issues,
		Unresolved:           res.Unresolved,
		Cycles:               res.Cycles,
		Nodes:                make([]NodeStatus, 0, len(res.Nodes)),
	}
	for _, n := range res.Nodes {
		b := n.Common()
		report.Nodes = append(report.Nodes, NodeStatus{
			ID:       b.ID,
			Kind:     n.Kind().String(),
			Name:     b.Name,
			Valid:    b.Valid(),
			Messages: b.Messages,
		})
	}
	return report
}
