// Package services defines shared utilities consumed by the pipeline steps and
// the external collaborator adapters.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, step names, target languages, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures into
//     the job error taxonomy (invalid timeline input, unreadable asset,
//     composition failure, external service failure, timeout).
//   - CompositionError, which keeps the transcoder diagnostics attached to the
//     error so the job report can surface them.
//
// Use these helpers when wiring new step logic so failure reporting stays
// uniform across the pipeline.
package services
