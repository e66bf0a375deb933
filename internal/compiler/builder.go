package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
	"github.com/roach88/cfdl/internal/schema"
)

// Severity says whether a finding fails the build.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity accepts "warning" or "error". Empty means warning.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case "", SeverityWarning:
		return SeverityWarning, nil
	case SeverityError:
		return SeverityError, nil
	default:
		return "", fmt.Errorf("invalid severity %q: must be warning or error", s)
	}
}

// Options configures a Builder. The zero value is usable.
type Options struct {
	// Logger receives phase and per-node diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger

	// Now stamps enrichment metadata. Nil means time.Now.
	Now func() time.Time

	// Workers bounds the goroutines used for transform, enrich and
	// validate. Zero or one runs sequentially.
	Workers int

	// Unresolved is the severity of references to unknown ids.
	Unresolved Severity

	// SchemaCheck, when set, checks every engine document against the
	// CUE definitions. Violations are warnings.
	SchemaCheck *schema.Checker
}

// Builder turns AST nodes into a Result. A Builder holds no per-build
// state; it may be reused and shared between goroutines.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Builder with defaults filled in.
func New(opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Unresolved == "" {
		opts.Unresolved = SeverityWarning
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{opts: opts, logger: logger}
}

// Build compiles nodes in five phases:
//
//  1. transform every node (parallel)
//  2. register transformed nodes and their children (sequential, source order)
//  3. enrich and validate (parallel)
//  4. resolve references, link capital stacks, find cycles
//  5. schema check and aggregate
//
// Build never returns nil. Output does not depend on Workers or on the
// order goroutines finish in. A cancelled context aborts the whole build.
func (b *Builder) Build(ctx context.Context, nodes []*ast.Node) *Result {
	start := b.opts.Now()
	res := newResult()
	log := b.logger.With("build_id", res.BuildID)

	if len(nodes) == 0 {
		res.addError("No AST nodes provided for IR building")
		b.finish(log, res, start)
		return res
	}

	outcomes := make([]Outcome, len(nodes))
	for i, n := range nodes {
		outcomes[i] = Outcome{Source: n, Stage: StageTransform}
	}

	log.Debug("transform phase", "nodes", len(nodes), "workers", b.opts.Workers)
	err := b.forEach(ctx, len(outcomes), func(i int) {
		o := &outcomes[i]
		node, err := Transform(o.Source)
		if err != nil {
			o.Err = err
			return
		}
		o.Node = node
		o.Stage = StageRegister
	})
	if err != nil {
		return b.cancelled(log, res, start, err)
	}
	for _, o := range outcomes {
		if o.Failed() {
			res.addError(fmt.Sprintf("Failed to transform AST node %s: %s", sourceID(o.Source), transformMessage(o.Err)))
			log.Warn("transform failed", "node", sourceID(o.Source), "error", o.Err)
		}
	}

	log.Debug("register phase")
	reg := NewRegistry()
	for i := range outcomes {
		o := &outcomes[i]
		if o.Failed() {
			continue
		}
		ir.Walk(o.Node, func(n ir.Node) {
			if err := reg.Register(n); err != nil {
				res.addWarning(registerMessage(n, err))
				log.Warn("register failed", "node", n.Common().ID, "error", err)
			}
		})
		o.Stage = StageEnrich
	}
	if err := ctx.Err(); err != nil {
		return b.cancelled(log, res, start, err)
	}

	log.Debug("enrich and validate phase", "registered", reg.Len())
	now := b.opts.Now()
	enrichFailures := make([][]string, len(outcomes))
	err = b.forEach(ctx, len(outcomes), func(i int) {
		o := &outcomes[i]
		if o.Failed() {
			return
		}
		ir.Walk(o.Node, func(n ir.Node) {
			if err := Enrich(n, now); err != nil {
				enrichFailures[i] = append(enrichFailures[i],
					fmt.Sprintf("Failed to enrich %s with schema metadata: %v", n.Common().ID, err))
				o.Err = err
			}
		})
		o.Stage = StageValidate
		o.Issues = Validate(o.Node)
		o.Stage = StageDone
	})
	if err != nil {
		return b.cancelled(log, res, start, err)
	}
	for _, msgs := range enrichFailures {
		for _, msg := range msgs {
			res.addWarning(msg)
			log.Warn("enrich failed", "detail", msg)
		}
	}

	log.Debug("resolve phase")
	built := make([]ir.Node, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Failed() {
			built = append(built, o.Node)
		}
	}
	res.Unresolved = Resolve(built, reg)
	for i := range outcomes {
		o := &outcomes[i]
		if o.Failed() {
			continue
		}
		ir.Walk(o.Node, func(n ir.Node) {
			o.Issues = append(o.Issues, CheckLinks(n)...)
		})
		res.Issues = append(res.Issues, o.Issues...)
	}
	res.Cycles = AnalyzeCycles(reg)

	for _, n := range built {
		ir.Walk(n, func(n ir.Node) {
			c := n.Common()
			for _, msg := range c.Messages {
				res.addError(fmt.Sprintf("Validation error in %s: %s", c.ID, msg))
			}
			if !c.Valid() {
				log.Warn("node invalid", "node", c.ID, "kind", n.Kind().String(), "messages", len(c.Messages))
			}
		})
	}
	for _, id := range res.Unresolved {
		msg := "Unresolved reference: " + id
		if b.opts.Unresolved == SeverityError {
			res.addError(msg)
		} else {
			res.addWarning(msg)
		}
	}
	for _, c := range res.Cycles {
		res.addWarning(c.Message)
	}

	if b.opts.SchemaCheck != nil {
		if err := ctx.Err(); err != nil {
			return b.cancelled(log, res, start, err)
		}
		log.Debug("schema check phase")
		for _, n := range built {
			for _, v := range b.opts.SchemaCheck.Check(n.Kind(), ir.EngineDocument(n)) {
				res.addWarning(fmt.Sprintf("Schema check %s: %s: %s", n.Common().ID, v.Path, v.Message))
			}
		}
	}

	res.Nodes = built
	res.Outcomes = outcomes
	b.finish(log, res, start)
	return res
}

// forEach runs fn for 0..n-1, sequentially or on a bounded errgroup. fn
// must only touch state owned by index i. The only error returned is the
// context's.
func (b *Builder) forEach(ctx context.Context, n int, fn func(i int)) error {
	if b.opts.Workers <= 1 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// cancelled discards everything built so far; partial results are never
// returned.
func (b *Builder) cancelled(log *slog.Logger, res *Result, start time.Time, err error) *Result {
	out := &Result{BuildID: res.BuildID}
	out.addError("Build cancelled: " + err.Error())
	b.finish(log, out, start)
	return out
}

func (b *Builder) finish(log *slog.Logger, res *Result, start time.Time) {
	res.Success = len(res.Errors) == 0
	res.Duration = b.opts.Now().Sub(start)
	log.Info("build complete",
		"success", res.Success,
		"nodes", len(res.Nodes),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"duration", res.Duration,
	)
}

func sourceID(n *ast.Node) string {
	if n == nil || n.ID == "" {
		return "<unknown>"
	}
	return n.ID
}

// transformMessage drops the TransformError prefix, which repeats the id
// the caller already prints.
func transformMessage(err error) string {
	var te *TransformError
	if errors.As(err, &te) {
		return te.Err.Error()
	}
	return err.Error()
}

func registerMessage(n ir.Node, err error) string {
	switch {
	case errors.Is(err, ErrDuplicateID):
		return fmt.Sprintf("Duplicate node id: %s (%s ignored for reference resolution)", n.Common().ID, n.Kind())
	case errors.Is(err, ErrEmptyID):
		return fmt.Sprintf("%s without id cannot be referenced", n.Kind())
	default:
		return err.Error()
	}
}
