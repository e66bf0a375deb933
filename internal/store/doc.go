// Package store keeps a SQLite history of compiler builds.
//
// Each build is written in one transaction as three kinds of rows:
//   - builds: one summary row (status, counts, duration, fingerprint)
//   - build_nodes: the canonical engine document and content hash of every
//     top-level node, in source order
//   - build_issues: every error and warning, in report order
//
// Node hashes come from ir.NodeHash, so NodeHistory can tell whether a
// definition changed between two builds without comparing documents.
//
// # Ordering
//
// Listings are ordered by created_at, then by build id. Build ids are
// UUIDv7 and sort in creation order, which breaks ties between builds
// stamped in the same instant. Rows inside a build are ordered by seq.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
