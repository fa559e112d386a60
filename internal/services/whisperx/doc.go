// Package whisperx transcribes narration audio into caption segments.
//
// Transcription shells out to the WhisperX CLI through uvx and reads back its
// JSON output. Sentence granularity returns the WhisperX segments as they are;
// word granularity flattens the aligned word timings and spaces them with the
// timeline word gap rule so consecutive captions never overlap.
//
// The command runner is injectable so tests can stand in for uvx by writing a
// canned JSON payload.
package whisperx
