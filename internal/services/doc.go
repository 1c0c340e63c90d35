// Package services defines shared utilities consumed by the pipeline stages
// and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run ids, show ids, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     so the CLI can map them onto process exit codes.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error reporting, observability) stays uniform across the pipeline.
package services
