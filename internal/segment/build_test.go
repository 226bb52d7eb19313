package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framesync/internal/align"
	"framesync/internal/segment"
)

func linearPairs(from, to int, slope, intercept float64) []align.Pair {
	pairs := make([]align.Pair, 0, to-from)
	for i := from; i < to; i++ {
		a := float64(i)
		pairs = append(pairs, align.Pair{A: a, B: slope*a + intercept})
	}
	return pairs
}

func TestBuild_SingleLinearRun(t *testing.T) {
	pairs := linearPairs(0, 10, 1.002, 0.5)

	segs := segment.Build(pairs, segment.DefaultOptions())
	require.Len(t, segs, 1)
	assert.InDelta(t, 1.002, segs[0].Slope, 1e-9)
	assert.InDelta(t, 0.5, segs[0].BStart, 1e-6)
	assert.Equal(t, 0.0, segs[0].AStart)
	assert.Equal(t, 9.0, segs[0].AEnd)
}

func TestBuild_SplitsOnOffsetJump(t *testing.T) {
	pairs := append(linearPairs(0, 6, 1, 0.1), linearPairs(6, 12, 1, 1.1)...)

	segs := segment.Build(pairs, segment.DefaultOptions())
	require.Len(t, segs, 2)
	assert.Equal(t, 5.0, segs[0].AEnd)
	assert.Equal(t, 6.0, segs[1].AStart)
	assert.InDelta(t, 0.1, segs[0].BStart, 1e-9)
	assert.InDelta(t, 7.1, segs[1].BStart, 1e-9)
}

func TestBuild_DropsUnderSupportedRuns(t *testing.T) {
	// Two outliers in the middle form their own short run and are discarded.
	pairs := linearPairs(0, 5, 1, 0)
	pairs = append(pairs, align.Pair{A: 5, B: 5.6}, align.Pair{A: 6, B: 6.6})
	pairs = append(pairs, linearPairs(7, 12, 1, 0)...)

	segs := segment.Build(pairs, segment.DefaultOptions())
	require.Len(t, segs, 2)
	assert.Equal(t, 4.0, segs[0].AEnd)
	assert.Equal(t, 7.0, segs[1].AStart)
}

func TestBuild_TooFewPairsYieldsEmpty(t *testing.T) {
	assert.Empty(t, segment.Build(linearPairs(0, 2, 1, 0), segment.DefaultOptions()))
	assert.Empty(t, segment.Build(nil, segment.DefaultOptions()))
}

// TestBuild_SmoothedReferenceFollowsDrift: a slow drift stays within one run
// because the reference follows it, even though the total drift exceeds the
// tolerance.
func TestBuild_SmoothedReferenceFollowsDrift(t *testing.T) {
	pairs := linearPairs(0, 60, 1.01, 0)

	segs := segment.Build(pairs, segment.DefaultOptions())
	require.Len(t, segs, 1)
	assert.InDelta(t, 1.01, segs[0].Slope, 1e-9)
}

func TestBuild_ZeroValueOptionsUseDefaults(t *testing.T) {
	segs := segment.Build(linearPairs(0, 3, 1, 2), segment.Options{})
	require.Len(t, segs, 1)
	assert.InDelta(t, 2.0, segs[0].BStart, 1e-9)
}

func TestBuild_SinglePointRunFallsBackToUnitSlope(t *testing.T) {
	segs := segment.Build([]align.Pair{{A: 3, B: 4.5}}, segment.Options{MinPairs: 1})
	require.Len(t, segs, 1)
	assert.Equal(t, 1.0, segs[0].Slope)
	assert.InDelta(t, 4.5, segs[0].BStart, 1e-12)
}

func TestRuns(t *testing.T) {
	pairs := append(linearPairs(0, 4, 1, 0), linearPairs(4, 6, 1, 2)...)

	runs := segment.Runs(pairs, segment.DefaultOptions())
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 4)
	assert.Len(t, runs[1], 2)
	assert.Nil(t, segment.Runs(nil, segment.DefaultOptions()))
}
