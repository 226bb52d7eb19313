// Package align pairs the events of two timelines with a bounded-error,
// edit-distance style dynamic program.
//
// Matching event a_i with b_j costs (a_i - b_j)^2; leaving an event of either
// series unmatched costs a fixed gap penalty in squared-seconds. The grid is
// filled row by row over two flat row-major slices (cost and winning move),
// then walked back from the bottom-right corner to recover the matched pairs.
//
// When several moves reach a cell with exactly the same cost the winner is,
// in order: the diagonal match, the deletion of an A event, the insertion of
// a B event. Callers depend on this order for reproducible output.
//
// Complexity:
//
//	Time   = O(n·m)
//	Memory = O(n·m), released when Align returns
//
// Align checks its context between rows so an interactive caller can abort a
// long alignment.
package align
