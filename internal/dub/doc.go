// Package dub translates an existing video into another language.
//
// A job runs in one of two modes. SubtitleOnly transcribes the source,
// translates each caption, and burns the translated captions into the
// (possibly letterboxed) picture. FullDub translates the whole transcript,
// synthesizes new narration, swaps it in for the original audio, and can
// optionally caption the new speech.
//
// Each mode is a plain list of Steps evaluated by a small interpreter. The
// interpreter checks for cancellation between steps, reports progress to an
// optional Observer, and always tears down the job's PipelineContext, which
// owns every intermediate file the steps create.
package dub
