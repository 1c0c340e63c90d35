// Package signals turns the raw score indicators of a canonical review into
// typed score signals.
//
// All mappings live in versioned rule tables (rating patterns, letter
// grades, badge wording, thumb verdicts, and the keyword lexicon) so the
// path from raw evidence to a signal can be audited without reading the
// reduction logic in package consensus. Changing any table must bump
// RulesVersion.
package signals
