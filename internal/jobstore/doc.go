// Package jobstore persists export job history in SQLite.
//
// Every narration or dub job gets a row when its batch starts and moves
// through pending, running, and one terminal status (completed, failed, or
// canceled). Rows carry the batch id, target language, current pipeline
// step, output path, and the classified failure reason so the CLI can show
// history after the process exits.
//
// SQLite handles cross-process locking; writes retry briefly on SQLITE_BUSY.
// Schema changes bump schemaVersion; users delete the database to adopt a new
// schema.
package jobstore
