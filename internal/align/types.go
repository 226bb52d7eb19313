package align

import "math"

// DefaultGapPenalty is the cost of leaving one event unmatched, in seconds².
const DefaultGapPenalty = 0.4

// DefaultMaxCells bounds the (n+1)·(m+1) grid allocated by Align.
const DefaultMaxCells = 25_000_000

// Move records which transition produced a grid cell.
type Move uint8

const (
	// MoveNone marks the origin cell.
	MoveNone Move = iota
	// MoveMatch pairs a_i with b_j (diagonal).
	MoveMatch
	// MoveDelete skips a_i (vertical).
	MoveDelete
	// MoveInsert skips b_j (horizontal).
	MoveInsert
)

func (m Move) String() string {
	switch m {
	case MoveMatch:
		return "match"
	case MoveDelete:
		return "delete"
	case MoveInsert:
		return "insert"
	default:
		return "none"
	}
}

// Options configures Align.
type Options struct {
	// GapPenalty is charged for every unmatched event in either series.
	GapPenalty float64
	// MaxCells rejects grids larger than this. Zero selects DefaultMaxCells.
	MaxCells int
}

// DefaultOptions returns the stock gap penalty and grid bound.
func DefaultOptions() Options {
	return Options{GapPenalty: DefaultGapPenalty, MaxCells: DefaultMaxCells}
}

// Pair is one correspondence between event A in timeline A and event B in
// timeline B.
type Pair struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Offset returns B - A.
func (p Pair) Offset() float64 { return p.B - p.A }

// Result is the output of Align. Pairs are non-decreasing in both
// coordinates. Cost is +Inf when no alignment was possible.
type Result struct {
	Pairs []Pair
	Cost  float64
}

// Feasible reports whether the result carries a finite cost.
func (r Result) Feasible() bool {
	return !math.IsInf(r.Cost, 1) && !math.IsNaN(r.Cost)
}

// Matches returns the number of matched pairs.
func (r Result) Matches() int { return len(r.Pairs) }

// OffsetStats summarizes the offsets B - A across the matched pairs.
type OffsetStats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Stats computes offset statistics. The zero value is returned for an empty
// result.
func (r Result) Stats() OffsetStats {
	if len(r.Pairs) == 0 {
		return OffsetStats{}
	}
	stats := OffsetStats{Count: len(r.Pairs), Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, p := range r.Pairs {
		off := p.Offset()
		sum += off
		stats.Min = math.Min(stats.Min, off)
		stats.Max = math.Max(stats.Max, off)
	}
	stats.Mean = sum / float64(len(r.Pairs))
	return stats
}
