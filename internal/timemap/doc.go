// Package timemap holds the piecewise-linear map from timeline A to timeline B
// and the read-only queries callers run against it.
//
// A Map is an ordered list of Segments, each the affine model
// b = Slope*(a - AStart) + BStart valid on [AStart, AEnd]. Queries outside the
// fitted range extrapolate with the first or last segment; queries that fall
// in a gap between segments use the nearest one. An empty Map is legal and
// means no segment had enough support.
package timemap
