// Package export writes alignment results to files: the time map as JSON for
// downstream tools and the matched pair table as CSV for diagnostics.
//
// File writes are atomic (temp file and rename in the target directory) so an
// interrupted run never leaves a truncated map behind.
package export
