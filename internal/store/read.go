package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cfdl/internal/ir"
)

// ErrNotFound is returned when a build id is not in the store.
var ErrNotFound = errors.New("not found")

// BuildRecord is a stored build. ListBuilds fills only the summary
// fields; ReadBuild also fills Nodes, Errors and Warnings.
type BuildRecord struct {
	ID           string        `json:"id"`
	Source       string        `json:"source"`
	Success      bool          `json:"success"`
	NodeCount    int           `json:"node_count"`
	ErrorCount   int           `json:"error_count"`
	WarningCount int           `json:"warning_count"`
	Duration     time.Duration `json:"duration"`
	Fingerprint  string        `json:"fingerprint"`
	CreatedAt    time.Time     `json:"created_at"`

	Nodes    []NodeRecord `json:"nodes,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// NodeRecord is one top-level node of a stored build.
type NodeRecord struct {
	BuildID  string      `json:"build_id"`
	Seq      int         `json:"seq"`
	NodeID   string      `json:"node_id"`
	Kind     string      `json:"kind"`
	Valid    bool        `json:"valid"`
	Hash     string      `json:"hash"`
	Document ir.IRObject `json:"document,omitempty"`
}

const buildColumns = `id, source, success, node_count, error_count, warning_count, duration_ms, fingerprint, created_at`

// ReadBuild loads a build with its nodes and issues.
// Returns an error wrapping ErrNotFound for an unknown id.
func (s *Store) ReadBuild(ctx context.Context, id string) (*BuildRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+buildColumns+` FROM builds WHERE id = ?`, id)
	rec, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read build %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read build %s: %w", id, err)
	}

	rec.Nodes, err = s.queryNodes(ctx, `
		SELECT build_id, seq, node_id, kind, valid, hash, document
		FROM build_nodes
		WHERE build_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read build %s: %w", id, err)
	}

	if rec.Errors, err = s.readIssues(ctx, id, severityError); err != nil {
		return nil, fmt.Errorf("read build %s: %w", id, err)
	}
	if rec.Warnings, err = s.readIssues(ctx, id, severityWarning); err != nil {
		return nil, fmt.Errorf("read build %s: %w", id, err)
	}
	return rec, nil
}

// ListBuilds returns build summaries, newest first. A limit of zero or
// less returns every build.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	builds := []BuildRecord{}
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("list builds: %w", err)
		}
		builds = append(builds, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return builds, nil
}

// NodeHistory returns every stored version of a node, oldest build first.
// Comparing Hash between entries shows when the definition changed.
func (s *Store) NodeHistory(ctx context.Context, nodeID string) ([]NodeRecord, error) {
	nodes, err := s.queryNodes(ctx, `
		SELECT n.build_id, n.seq, n.node_id, n.kind, n.valid, n.hash, n.document
		FROM build_nodes n
		JOIN builds b ON b.id = n.build_id
		WHERE n.node_id = ?
		ORDER BY b.created_at ASC, b.id ASC, n.seq ASC
	`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("node history %s: %w", nodeID, err)
	}
	return nodes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(sc scanner) (*BuildRecord, error) {
	var (
		rec        BuildRecord
		success    int
		durationMS int64
		createdAt  string
	)
	err := sc.Scan(
		&rec.ID,
		&rec.Source,
		&success,
		&rec.NodeCount,
		&rec.ErrorCount,
		&rec.WarningCount,
		&durationMS,
		&rec.Fingerprint,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Success = success != 0
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return &rec, nil
}

func (s *Store) queryNodes(ctx context.Context, query string, args ...any) ([]NodeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []NodeRecord{}
	for rows.Next() {
		var (
			n     NodeRecord
			valid int
			doc   string
		)
		if err := rows.Scan(&n.BuildID, &n.Seq, &n.NodeID, &n.Kind, &valid, &n.Hash, &doc); err != nil {
			return nil, err
		}
		n.Valid = valid != 0
		if n.Document, err = unmarshalDocument(doc); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.NodeID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Store) readIssues(ctx context.Context, buildID, severity string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message FROM build_issues
		WHERE build_id = ? AND severity = ?
		ORDER BY seq ASC
	`, buildID, severity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []string{}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// unmarshalDocument goes through IRObject.UnmarshalJSON so integers keep
// their exact value.
func unmarshalDocument(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return obj, nil
}
