// Package logs reads the JSON log file written under paths.log_dir.
//
// It returns the last N matching lines with bounded memory, follows the file
// from a byte offset for `reelsmith logs --follow`, and narrows output to a
// single job, batch, or language through Filter. Callers supply context
// deadlines so polling stops cleanly when the CLI exits.
package logs
