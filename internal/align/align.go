package align

import (
	"context"
	"errors"
	"fmt"
	"math"

	"framesync/internal/timeline"
)

var (
	// ErrInfeasible indicates one or both series are empty.
	ErrInfeasible = errors.New("align: both series must be non-empty")

	// ErrUnordered indicates a series that is not strictly increasing.
	ErrUnordered = errors.New("align: series must be strictly increasing")

	// ErrGridTooLarge indicates the grid would exceed Options.MaxCells.
	ErrGridTooLarge = errors.New("align: alignment grid too large")

	// ErrBadPenalty indicates a negative or non-finite gap penalty.
	ErrBadPenalty = errors.New("align: gap penalty must be finite and non-negative")
)

// grid holds the cost and winning move of every cell in two flat row-major
// slices of (n+1)*(m+1) elements.
type grid struct {
	n, m int
	cost []float64
	move []Move
}

func newGrid(n, m int) *grid {
	size := (n + 1) * (m + 1)
	return &grid{n: n, m: m, cost: make([]float64, size), move: make([]Move, size)}
}

func (g *grid) at(i, j int) int { return i*(g.m+1) + j }

// Align computes the minimum-cost monotonic correspondence between a and b.
//
// Boundary: D[0,0]=0, D[i,0]=i·gap, D[0,j]=j·gap.
// Recurrence: D[i,j] = min(D[i-1,j-1] + (a_i-b_j)², D[i-1,j] + gap, D[i,j-1] + gap).
//
// Empty input yields Result{Cost: +Inf} together with ErrInfeasible.
func Align(ctx context.Context, a, b timeline.Series, opts Options) (Result, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return Result{Cost: math.Inf(1)}, ErrInfeasible
	}
	gap := opts.GapPenalty
	if gap < 0 || math.IsNaN(gap) || math.IsInf(gap, 0) {
		return Result{Cost: math.Inf(1)}, ErrBadPenalty
	}
	if !a.Valid(0) || !b.Valid(0) {
		return Result{Cost: math.Inf(1)}, ErrUnordered
	}
	maxCells := opts.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	if (n+1) > maxCells/(m+1) {
		return Result{Cost: math.Inf(1)}, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrGridTooLarge, n+1, m+1, maxCells)
	}

	g, err := fill(ctx, a, b, gap)
	if err != nil {
		return Result{Cost: math.Inf(1)}, err
	}
	return Result{Pairs: backtrace(g, a, b), Cost: g.cost[g.at(n, m)]}, nil
}

func fill(ctx context.Context, a, b timeline.Series, gap float64) (*grid, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	n, m := len(a), len(b)
	g := newGrid(n, m)

	for j := 1; j <= m; j++ {
		g.cost[g.at(0, j)] = float64(j) * gap
		g.move[g.at(0, j)] = MoveInsert
	}
	for i := 1; i <= n; i++ {
		g.cost[g.at(i, 0)] = float64(i) * gap
		g.move[g.at(i, 0)] = MoveDelete
	}

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("align: row %d: %w", i, err)
		}
		row := g.at(i, 0)
		prevRow := g.at(i-1, 0)
		ai := a[i-1]
		for j := 1; j <= m; j++ {
			d := ai - b[j-1]
			match := g.cost[prevRow+j-1] + d*d
			del := g.cost[prevRow+j] + gap
			ins := g.cost[row+j-1] + gap

			best, mv := match, MoveMatch
			if del < best {
				best, mv = del, MoveDelete
			}
			if ins < best {
				best, mv = ins, MoveInsert
			}
			g.cost[row+j] = best
			g.move[row+j] = mv
		}
	}
	return g, nil
}

func backtrace(g *grid, a, b timeline.Series) []Pair {
	var pairs []Pair
	i, j := g.n, g.m
	for i > 0 || j > 0 {
		switch g.move[g.at(i, j)] {
		case MoveMatch:
			pairs = append(pairs, Pair{A: a[i-1], B: b[j-1]})
			i--
			j--
		case MoveDelete:
			i--
		case MoveInsert:
			j--
		default:
			i, j = 0, 0
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs
}
