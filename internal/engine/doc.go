// Package engine runs the alignment pipeline end to end.
//
// Run normalizes both event series, aligns them, builds segments from the
// matched pairs and merges collinear neighbours into the final time map. The
// pipeline is synchronous and deterministic: the same input and settings
// always produce the same Report, apart from Elapsed. An empty time map is a
// legal outcome reported through Report.SegmentationEmpty rather than an
// error, so callers may Relax the settings and Resegment without paying for
// another alignment.
package engine
