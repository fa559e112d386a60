// Package export runs batches of per-language jobs and writes their results
// into the export directory.
//
// A narration batch voices one script per language over a shared background
// (a single video or a slideshow built from a media folder), captions the
// narration, and optionally stamps a logo and renders a cover image. A dub
// batch runs the dub pipeline once per target language against one source.
//
// Jobs run concurrently up to export.concurrency. A failed job never stops its
// siblings; each job has its own temporary namespace under the work directory
// and its lifecycle is recorded in the job store when one is attached. The
// export directory is held under an advisory lock for the length of a batch so
// two batches never interleave manifest writes.
package export
