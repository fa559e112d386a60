// Package transcode is the boundary to the external ffmpeg process.
//
// Callers describe work as a structured Request: inputs with their
// pre-input options, an optional filter chain or labelled filter graph,
// stream maps, and output options. Args serializes a Request into an ffmpeg
// argument vector and is the only place that knows filter-graph syntax.
//
// Executor runs a Request synchronously and reports Result{OK, Diagnostics};
// it never retries. Tests swap the process runner with WithCommandRunner.
package transcode
