package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/ir"
)

const (
	severityError   = "error"
	severityWarning = "warning"
)

// WriteBuild records r under r.BuildID in a single transaction. source
// names what was compiled, usually the entry file path.
//
// Uses ON CONFLICT(id) DO NOTHING on the builds row; writing the same
// result twice is a no-op.
func (s *Store) WriteBuild(ctx context.Context, source string, r *compiler.Result) error {
	if r == nil {
		return fmt.Errorf("write build: nil result")
	}
	if r.BuildID == "" {
		return fmt.Errorf("write build: empty build id")
	}

	rows, err := nodeRows(r.Nodes)
	if err != nil {
		return fmt.Errorf("write build %s: %w", r.BuildID, err)
	}
	fingerprint, err := ir.BuildFingerprint(r.Nodes)
	if err != nil {
		return fmt.Errorf("write build %s: %w", r.BuildID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write build %s: begin: %w", r.BuildID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, source, success, node_count, error_count, warning_count, duration_ms, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.BuildID,
		source,
		boolInt(r.Success),
		len(r.Nodes),
		len(r.Errors),
		len(r.Warnings),
		r.Duration.Milliseconds(),
		fingerprint,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("write build %s: %w", r.BuildID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO build_nodes
			(build_id, seq, node_id, kind, valid, hash, document)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			r.BuildID,
			row.Seq,
			row.NodeID,
			row.Kind,
			boolInt(row.Valid),
			row.Hash,
			row.document,
		)
		if err != nil {
			return fmt.Errorf("write build %s: node %s: %w", r.BuildID, row.NodeID, err)
		}
	}

	if err := writeIssues(ctx, tx, r.BuildID, severityError, r.Errors); err != nil {
		return fmt.Errorf("write build %s: %w", r.BuildID, err)
	}
	if err := writeIssues(ctx, tx, r.BuildID, severityWarning, r.Warnings); err != nil {
		return fmt.Errorf("write build %s: %w", r.BuildID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write build %s: commit: %w", r.BuildID, err)
	}
	return nil
}

func writeIssues(ctx context.Context, tx *sql.Tx, buildID, severity string, msgs []string) error {
	for i, msg := range msgs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO build_issues (build_id, severity, seq, message)
			VALUES (?, ?, ?, ?)
		`, buildID, severity, i+1, msg)
		if err != nil {
			return fmt.Errorf("%s %d: %w", severity, i+1, err)
		}
	}
	return nil
}

// pendingNode is a NodeRecord plus its encoded document.
type pendingNode struct {
	NodeRecord
	document string
}

// nodeRows encodes every node up front so a bad document fails the write
// before the transaction starts.
func nodeRows(nodes []ir.Node) ([]pendingNode, error) {
	out := make([]pendingNode, 0, len(nodes))
	for i, n := range nodes {
		doc, err := ir.MarshalCanonical(ir.EngineDocument(n))
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", n.Common().ID, err)
		}
		hash, err := ir.NodeHash(n)
		if err != nil {
			return nil, err
		}
		out = append(out, pendingNode{
			NodeRecord: NodeRecord{
				Seq:    i + 1,
				NodeID: n.Common().ID,
				Kind:   n.Kind().String(),
				Valid:  n.Common().Valid(),
				Hash:   hash,
			},
			document: string(doc),
		})
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout has fixed-width fractions so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
