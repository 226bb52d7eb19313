package timeline

import (
	"errors"
	"math"
	"slices"
)

// DefaultEpsilon is the minimum gap, in seconds, between two kept events.
const DefaultEpsilon = 1e-6

// ErrInsufficientEvents is returned when a series is empty after cleaning and
// no duration is available for the synthetic fallback.
var ErrInsufficientEvents = errors.New("insufficient events")

// Series is a strictly increasing sequence of non-negative timestamps in seconds.
type Series []float64

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// Epsilon merges neighbours closer than this value. Zero selects DefaultEpsilon.
	Epsilon float64
	// MaxEvents caps the output length. Zero or negative disables the cap.
	MaxEvents int
	// Duration is the recording length used for the two-point fallback.
	Duration float64
}

// Normalize sorts raw timestamps, merges near-duplicates, and applies the
// optional length cap. The boolean result reports whether the synthetic
// [0, Duration] fallback was used.
func Normalize(raw []float64, opts NormalizeOptions) (Series, bool, error) {
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		values = append(values, v)
	}
	slices.Sort(values)

	series := make(Series, 0, len(values))
	for _, v := range values {
		if len(series) > 0 && v-series[len(series)-1] <= eps {
			continue
		}
		series = append(series, v)
	}

	if opts.MaxEvents > 0 {
		series = Downsample(series, opts.MaxEvents)
	}

	if len(series) == 0 {
		if opts.Duration > eps && !math.IsInf(opts.Duration, 0) {
			return Series{0, opts.Duration}, true, nil
		}
		return nil, false, ErrInsufficientEvents
	}
	return series, false, nil
}

// Downsample keeps max evenly spaced indices of s, always including the first
// and last element. Spacing is by index, not by time. The input is returned
// unchanged when it already fits.
func Downsample(s Series, max int) Series {
	n := len(s)
	if max <= 0 || n <= max {
		return s
	}
	if max == 1 {
		return Series{s[0]}
	}
	out := make(Series, max)
	span := float64(n - 1)
	for k := 0; k < max; k++ {
		idx := int(math.Round(float64(k) * span / float64(max-1)))
		out[k] = s[idx]
	}
	return out
}

// Duration returns the distance between the first and last event.
func (s Series) Duration() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1] - s[0]
}

// Valid reports whether s is strictly increasing with gaps larger than eps.
func (s Series) Valid(eps float64) bool {
	for i := 1; i < len(s); i++ {
		if s[i]-s[i-1] <= eps {
			return false
		}
	}
	return true
}
