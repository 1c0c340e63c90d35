// Package logging assembles structured slog loggers and formatting helpers used
// across marquee commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so per-show workers can tag log
// lines with the run id, show id, and stage without threading loggers through
// every call. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape and field names.
package logging
