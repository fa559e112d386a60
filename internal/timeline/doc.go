// Package timeline computes how visual material is fitted to a narration track.
//
// Reconcile chooses between trimming and looping a single source video,
// ScheduleSlots sequences a folder of images and clips into crossfaded slots
// whose rendered length equals the target exactly, and EnforceWordGaps keeps
// word-level captions from overlapping. All three are pure; ScanFolder and
// FillDurations are the only functions that touch the filesystem or a prober.
package timeline
