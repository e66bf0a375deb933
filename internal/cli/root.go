package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/config"
	"github.com/roach88/cfdl/internal/schema"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{formatText, formatJSON}

// Version is printed by the version command. Release builds set it with
// -ldflags "-X github.com/roach88/cfdl/internal/cli.Version=...".
var Version = "dev"

// RootOptions holds global flags for all commands, merged with the config
// file before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string

	// Set by PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the cfdl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cfdl",
		Short: "CFDL compiler",
		Long: `Compile Cash Flow Description Language sources into the
schema-annotated, dependency-resolved IR consumed by the valuation engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./"+config.DefaultFileName+" if present)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "build history database (overrides store.path)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// resolve loads the config file and lets explicitly set flags win over it.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !isValidFormat(o.Format) {
		f := &OutputFormatter{Format: formatText, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
		return f.fail(ExitCommandError, ErrCodeUsage,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats), nil)
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return o.formatter(cmd).fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
	}
	o.Config = cfg

	if !flags.Changed("format") && cfg.Output.Format != "" {
		o.Format = string(cfg.Output.Format)
	}
	if !flags.Changed("db") {
		o.DBPath = cfg.Store.Path
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	if path := o.ConfigPath; path != "" {
		o.Logger.Debug("config loaded", "path", path)
	}
	return nil
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath != "" {
		return config.Load(o.ConfigPath)
	}
	dir, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	cfg, path, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}
	o.ConfigPath = path
	return cfg, nil
}

// newLogger writes text records to w. Without --verbose only errors are
// shown; the build report already carries warnings.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// builder assembles a compiler.Builder from the merged settings.
func (o *RootOptions) builder() (*compiler.Builder, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	severity, err := compiler.ParseSeverity(string(cfg.Build.Unresolved))
	if err != nil {
		return nil, err
	}
	opts := compiler.Options{
		Logger:     o.Logger,
		Workers:    cfg.Build.Workers,
		Unresolved: severity,
	}
	if cfg.Build.SchemaCheck {
		checker, err := schema.NewChecker()
		if err != nil {
			return nil, err
		}
		opts.SchemaCheck = checker
	}
	return compiler.New(opts), nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// NewVersionCommand prints the build version.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if f.json() {
				return f.Success(map[string]string{"version": Version})
			}
			return f.Success("cfdl " + Version)
		},
	}
}
