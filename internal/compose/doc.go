// Package compose turns reconciled timing and style data into transcode
// requests and runs them.
//
// Every operation issues one or more synchronous transcode.Request values,
// always overwrites its destination, and removes the transient files it
// created on both success and failure. A failed run surfaces as a
// services.CompositionError carrying the transcoder diagnostics; nothing is
// retried.
//
// Operations:
//   - Merge: narration onto video (trim, loop then trim, or keep length with
//     optional looped background music)
//   - BurnCaptions / BurnCaptionsOnImage: hard subtitles via force_style
//   - OverlayLogo: scaled logo at a fixed position
//   - Slideshow: normalized per-slot clips joined by an xfade chain
//   - Concat: concat demuxer with stream copy
//   - InsertSegment: full-screen media spliced in with fades, base audio kept
//   - Letterbox: landscape sources padded to 9:16
//   - ExtractAudio / ExtractFrame: WAV for transcription, still for covers
package compose
