// Package segment turns matched event pairs into the linear pieces of a time
// map.
//
// Build walks the pairs in order while tracking a smoothed reference offset
// (b - a). A pair whose offset jumps away from the reference by more than the
// tolerance closes the current run and opens a new one. Each run with enough
// support is fitted by ordinary least squares. Merge then coalesces adjacent
// segments whose models agree within tight slope and intercept tolerances.
package segment
