// Package pipeline wires the reconciliation stages into one batch run.
//
// Run resolves every show concurrently with a bounded worker pool, fans the
// per-show results back in, and then runs the whole-corpus stages (the
// cross-entity guard, scoring, the critic registry, and the audit gate) on a
// single goroutine. Persist writes the outputs under an exclusive lock on the
// data directory; every output file is replaced atomically.
package pipeline
