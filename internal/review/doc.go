// Package review defines the data model shared by every stage of the
// reconciliation pipeline.
//
// SourceRecords are raw observations owned by the ingestion boundary and are
// never mutated here. Identities, clusters, canonical reviews, score signals,
// consensus scores, and flags are all derived values: the pipeline rebuilds
// them from the full record set on every run so results do not depend on
// arrival order.
//
// ScoreSignal is a closed set of kinds. Each kind is produced by exactly one
// rule table in internal/signals and carries only the fields that kind has.
package review
