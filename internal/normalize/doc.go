// Package normalize runs the analyze, decide, and correct workflow for audio
// assets.
//
// Runner.ProcessFile measures one file with the configured Tool, parses the
// loudnorm report, and leaves the file alone when its integrated loudness is
// already below the target. Otherwise the original is staged beside the asset
// as original-<name> and a linear correction pass writes the canonical path.
// A failed correction never deletes or restores the staged original.
//
// Runner.ProcessDirectory applies ProcessFile to every matching file directly
// inside a directory. Per-asset failures are collected in the Summary and never
// abort the batch; only a bad directory or a cancelled context ends it early.
//
// Failures are *Error values tagged with a Kind and a services marker, so
// callers can branch with KindOf or errors.Is.
package normalize
