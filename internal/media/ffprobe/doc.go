// Package ffprobe provides a typed view of ffprobe JSON output.
//
// Probing goes through github.com/u2takey/ffmpeg-go, which runs ffprobe with
// a timeout and returns the JSON document. Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Prober: bounded probe with an injectable backend; it also satisfies the
//     timeline duration prober
//
// Helper methods on Result give stream counts, duration, and the primary
// video dimensions.
package ffprobe
