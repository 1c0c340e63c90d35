// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, runs the reconciliation
// pipeline over a directory of source records, and reads back the persisted
// canonical store, audit report, and critic registry. Exit codes follow
// services.ExitCode so scripts can tell a failed audit gate (3) apart from a
// configuration problem (2) or any other failure (1).
//
// Keep this package thin: behaviour belongs in the internal packages and is
// only surfaced here.
package main
