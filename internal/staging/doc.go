// Package staging manages the per-job scratch directories export batches
// create under paths.work_dir.
//
// Only directories named like job scratch space ({kind}-{language}-{uuid})
// are listed or removed, so other content in the work directory is left
// alone.
package staging
