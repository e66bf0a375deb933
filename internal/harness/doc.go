// Package harness runs conformance scenarios against the CFDL compiler.
//
// A scenario is a YAML file naming CFDL sources (or holding one inline),
// the build options to use, and what the build must produce: overall
// success, node count, the exact error and warning lists, and per-node
// assertions such as validity, metadata values and dependencies.
//
// Every scenario builds with a fixed clock and a silent logger, so two runs
// of the same scenario produce identical results. RunWithGolden also
// compares the build's engine documents and findings with a golden file
// under testdata/golden/<name>.golden.
//
// Scenario files are parsed strictly: unknown fields are errors, which
// catches typos such as "assertion:" for "assertions:".
package harness
