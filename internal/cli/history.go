package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cfdl/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	Node  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [build-id]",
		Short: "List builds recorded with compile --save",
		Long: `List stored builds, newest first.

With a build id, print that build's issues and nodes. With --node, print
every stored version of one node and whether its content changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of builds to list (0 for all)")
	cmd.Flags().StringVar(&opts.Node, "node", "", "show the history of one node id")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.DBPath == "" {
		return formatter.fail(ExitCommandError, ErrCodeUsage, "no history database: pass --db or set store.path in the config file", nil)
	}
	if len(args) == 1 && opts.Node != "" {
		return formatter.fail(ExitCommandError, ErrCodeUsage, "a build id and --node cannot be combined", nil)
	}

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), err)
	}
	defer s.Close()

	switch {
	case len(args) == 1:
		rec, err := s.ReadBuild(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return formatter.fail(ExitFailure, ErrCodeBuildNotFound, "no build with id "+args[0], err)
		}
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		if formatter.json() {
			return formatter.Success(rec)
		}
		printBuild(formatter, rec)

	case opts.Node != "":
		nodes, err := s.NodeHistory(ctx, opts.Node)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		if formatter.json() {
			return formatter.Success(nodes)
		}
		printNodeHistory(formatter, opts.Node, nodes)

	default:
		builds, err := s.ListBuilds(ctx, opts.Limit)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		if formatter.json() {
			return formatter.Success(builds)
		}
		printBuilds(formatter, builds)
	}
	return nil
}

func printBuilds(f *OutputFormatter, builds []store.BuildRecord) {
	if len(builds) == 0 {
		fmt.Fprintln(f.Writer, "No builds recorded.")
		return
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILD\tCREATED\tSTATUS\tNODES\tERRORS\tWARNINGS\tSOURCE")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			b.ID, b.CreatedAt.Format(time.RFC3339), status(b.Success),
			b.NodeCount, b.ErrorCount, b.WarningCount, b.Source)
	}
	tw.Flush()
}

func printBuild(f *OutputFormatter, b *store.BuildRecord) {
	w := f.Writer
	fmt.Fprintf(w, "Build %s (%s)\n", b.ID, status(b.Success))
	fmt.Fprintf(w, "Source: %s\n", b.Source)
	fmt.Fprintf(w, "Created: %s\n", b.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Build Time: %dms\n", b.Duration.Milliseconds())
	fmt.Fprintf(w, "Fingerprint: %s\n\n", b.Fingerprint)

	for _, section := range []struct {
		title string
		items []string
	}{{"ERRORS", b.Errors}, {"WARNINGS", b.Warnings}} {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", section.title, len(section.items))
		for i, msg := range section.items {
			fmt.Fprintf(w, "  %d. %s\n", i+1, msg)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "NODES (%d):\n", len(b.Nodes))
	for _, n := range b.Nodes {
		valid := ""
		if !n.Valid {
			valid = " [INVALID]"
		}
		fmt.Fprintf(w, "  - %s %s %s%s\n", n.Kind, n.NodeID, shortHash(n.Hash), valid)
	}
}

func printNodeHistory(f *OutputFormatter, id string, nodes []store.NodeRecord) {
	if len(nodes) == 0 {
		fmt.Fprintf(f.Writer, "No stored versions of %s.\n", id)
		return
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILD\tKIND\tHASH\tVALID\tCHANGE")
	prev := ""
	for _, n := range nodes {
		change := "changed"
		switch {
		case prev == "":
			change = "first"
		case prev == n.Hash:
			change = "same"
		}
		prev = n.Hash
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", n.BuildID, n.Kind, shortHash(n.Hash), n.Valid, change)
	}
	tw.Flush()
}

func status(success bool) string {
	if success {
		return "ok"
	}
	return "failed"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
