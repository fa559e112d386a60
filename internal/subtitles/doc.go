// Package subtitles owns the caption segment model and its SRT encoding.
//
// Segments are produced by the transcriber, translated in place by the dub
// pipeline, and serialized here before the compositor burns them into video.
// Timestamps are seconds as float64; SRT rendering truncates to milliseconds.
package subtitles
