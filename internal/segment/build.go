package segment

import (
	"math"

	"framesync/internal/align"
	"framesync/internal/timemap"
)

const (
	DefaultOffsetTolerance = 0.25
	DefaultMinPairs        = 3
	DefaultSmoothing       = 0.9
)

// Options configures Build.
type Options struct {
	// OffsetTolerance is the largest offset deviation, in seconds, from the
	// running reference that keeps a pair in the current run.
	OffsetTolerance float64
	// MinPairs is the minimum run length that produces a segment.
	MinPairs int
	// Smoothing is the weight kept by the reference on every update:
	// ref = Smoothing*ref + (1-Smoothing)*offset. Values outside (0, 1)
	// select DefaultSmoothing.
	Smoothing float64
}

// DefaultOptions returns the stock segmentation parameters.
func DefaultOptions() Options {
	return Options{
		OffsetTolerance: DefaultOffsetTolerance,
		MinPairs:        DefaultMinPairs,
		Smoothing:       DefaultSmoothing,
	}
}

func (o Options) withDefaults() Options {
	if o.OffsetTolerance <= 0 {
		o.OffsetTolerance = DefaultOffsetTolerance
	}
	if o.MinPairs <= 0 {
		o.MinPairs = DefaultMinPairs
	}
	if o.Smoothing <= 0 || o.Smoothing >= 1 {
		o.Smoothing = DefaultSmoothing
	}
	return o
}

// run is a half-open index range [start, end) into the pair list.
type run struct {
	start, end int
}

// runTracker is the offset state machine: it accumulates pairs into the
// current run until one deviates from the smoothed reference.
type runTracker struct {
	tol    float64
	keep   float64
	start  int
	ref    float64
	closed []run
}

func newRunTracker(firstOffset float64, opts Options) *runTracker {
	return &runTracker{tol: opts.OffsetTolerance, keep: opts.Smoothing, ref: firstOffset}
}

func (rt *runTracker) observe(i int, offset float64) {
	if math.Abs(offset-rt.ref) > rt.tol {
		rt.closed = append(rt.closed, run{start: rt.start, end: i})
		rt.start = i
		rt.ref = offset
		return
	}
	rt.ref = rt.keep*rt.ref + (1-rt.keep)*offset
}

func (rt *runTracker) finish(n int) []run {
	return append(rt.closed, run{start: rt.start, end: n})
}

// Runs splits pairs into consecutive runs of consistent offset. It is exposed
// for diagnostics; Build is the usual entry point.
func Runs(pairs []align.Pair, opts Options) [][]align.Pair {
	if len(pairs) == 0 {
		return nil
	}
	opts = opts.withDefaults()
	out := make([][]align.Pair, 0, 4)
	for _, r := range splitRuns(pairs, opts) {
		out = append(out, pairs[r.start:r.end])
	}
	return out
}

func splitRuns(pairs []align.Pair, opts Options) []run {
	rt := newRunTracker(pairs[0].Offset(), opts)
	for i := 1; i < len(pairs); i++ {
		rt.observe(i, pairs[i].Offset())
	}
	return rt.finish(len(pairs))
}

// Build converts matched pairs into fitted segments. Runs shorter than
// MinPairs are dropped; the result may be empty.
func Build(pairs []align.Pair, opts Options) []timemap.Segment {
	if len(pairs) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	var segments []timemap.Segment
	for _, r := range splitRuns(pairs, opts) {
		points := pairs[r.start:r.end]
		if len(points) < opts.MinPairs {
			continue
		}
		slope, intercept, ok := fitLine(points)
		if !ok {
			continue
		}
		aStart := points[0].A
		segments = append(segments, timemap.Segment{
			AStart: aStart,
			AEnd:   points[len(points)-1].A,
			BStart: slope*aStart + intercept,
			Slope:  slope,
		})
	}
	return segments
}

// fitLine computes the ordinary least-squares line b = slope*a + intercept.
// A run with no spread in a falls back to slope 1 through the mean offset.
func fitLine(points []align.Pair) (float64, float64, bool) {
	n := float64(len(points))
	var sumA, sumB float64
	for _, p := range points {
		sumA += p.A
		sumB += p.B
	}
	meanA, meanB := sumA/n, sumB/n

	var sxx, sxy float64
	for _, p := range points {
		da := p.A - meanA
		sxx += da * da
		sxy += da * (p.B - meanB)
	}
	if sxx == 0 {
		return 1, meanB - meanA, true
	}
	slope := sxy / sxx
	if slope <= 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, 0, false
	}
	return slope, meanB - slope*meanA, true
}
