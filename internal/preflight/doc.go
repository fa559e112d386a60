// Package preflight provides readiness checks for the external services,
// binaries, and filesystem paths that reelsmith depends on.
//
// These checks run in two contexts:
//   - Batch commands call RunAll before exporting. If any check fails, the
//     batch is not started to avoid burning TTS quota on a doomed run.
//   - The CLI "reelsmith check" command renders every result, including
//     binary availability from CheckSystemDeps.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
