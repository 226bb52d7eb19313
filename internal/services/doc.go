// Package services defines shared utilities consumed by the alignment engine,
// the external collaborators, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable with errors.Is after several layers of wrapping.
//   - ExitCode, which maps a marker to the process exit status reported by the
//     CLI.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
