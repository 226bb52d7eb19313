package segment

import (
	"math"

	"framesync/internal/timemap"
)

const (
	DefaultSlopeTolerance     = 0.001
	DefaultInterceptTolerance = 0.05
)

// MergeOptions configures Merge.
type MergeOptions struct {
	SlopeTolerance     float64
	InterceptTolerance float64
}

// DefaultMergeOptions returns the stock merge tolerances.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{SlopeTolerance: DefaultSlopeTolerance, InterceptTolerance: DefaultInterceptTolerance}
}

// Merge folds each segment into the previously emitted one when the previous
// model predicts it: slopes differ by less than SlopeTolerance and the
// previous model's value at s.AStart is within InterceptTolerance of s.BStart.
// A merged segment keeps the earlier model and takes the later AEnd. The input
// slice is not modified.
func Merge(segments []timemap.Segment, opts MergeOptions) timemap.Map {
	if opts.SlopeTolerance <= 0 {
		opts.SlopeTolerance = DefaultSlopeTolerance
	}
	if opts.InterceptTolerance <= 0 {
		opts.InterceptTolerance = DefaultInterceptTolerance
	}

	out := make(timemap.Map, 0, len(segments))
	for _, s := range segments {
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		prev := &out[len(out)-1]
		predicted := prev.BStart + (s.AStart-prev.AStart)*prev.Slope
		if math.Abs(prev.Slope-s.Slope) < opts.SlopeTolerance &&
			math.Abs(predicted-s.BStart) < opts.InterceptTolerance {
			prev.AEnd = s.AEnd
			continue
		}
		out = append(out, s)
	}
	return out
}
