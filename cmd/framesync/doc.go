// Command framesync aligns two recordings of the same timeline and emits a
// piecewise-linear time map from timeline A to timeline B.
//
// Subcommands:
//   - align: probe keyframes of two media files and build a time map
//   - align-series: same pipeline on JSON arrays of event timestamps
//   - query: project timestamps through a saved time map
//   - probe: show the keyframe series of one media file
//   - runs: list, show, remove and prune recorded runs
//   - cache: list or clear cached probes
//   - config: init, validate and show configuration
//   - deps: report external binary availability
//   - logs: read back or follow the JSON log file
//
// Exit status follows the error class: 2 for unusable input, 3 when no
// alignment is feasible, 4 when ffprobe fails, 5 for configuration problems
// and 1 for anything else.
package main
