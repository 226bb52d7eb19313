package timeline_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framesync/internal/timeline"
)

func TestNormalize_SortsAndDedupes(t *testing.T) {
	raw := []float64{3, 1, 2, 1.0000001, 2, 0, math.NaN(), -1, math.Inf(1)}

	got, fallback, err := timeline.Normalize(raw, timeline.NormalizeOptions{})
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, timeline.Series{0, 1, 2, 3}, got)
}

func TestNormalize_KeepsFirstOfNearDuplicates(t *testing.T) {
	got, _, err := timeline.Normalize([]float64{5.0000004, 5}, timeline.NormalizeOptions{Epsilon: 1e-6})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0], "sorted first occurrence is kept")
}

func TestNormalize_MaxEventsKeepsEndpoints(t *testing.T) {
	raw := make([]float64, 101)
	for i := range raw {
		raw[i] = float64(i) * 0.5
	}

	got, _, err := timeline.Normalize(raw, timeline.NormalizeOptions{MaxEvents: 11})
	require.NoError(t, err)
	require.Len(t, got, 11)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 50.0, got[10])
	assert.Equal(t, 5.0, got[1], "index spacing of 10 over 101 elements")
}

func TestNormalize_FallbackToDuration(t *testing.T) {
	got, fallback, err := timeline.Normalize(nil, timeline.NormalizeOptions{Duration: 42.5})
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, timeline.Series{0, 42.5}, got)
}

func TestNormalize_EmptyWithoutDuration(t *testing.T) {
	_, _, err := timeline.Normalize([]float64{-3, math.NaN()}, timeline.NormalizeOptions{})
	assert.ErrorIs(t, err, timeline.ErrInsufficientEvents)
}

func TestDownsample(t *testing.T) {
	s := timeline.Series{0, 1, 2, 3, 4, 5, 6}

	assert.Equal(t, s, timeline.Downsample(s, 0), "cap disabled")
	assert.Equal(t, s, timeline.Downsample(s, 10), "already fits")
	assert.Equal(t, timeline.Series{0}, timeline.Downsample(s, 1))
	assert.Equal(t, timeline.Series{0, 6}, timeline.Downsample(s, 2))
	assert.Equal(t, timeline.Series{0, 2, 4, 6}, timeline.Downsample(s, 4))
}

// TestNormalize_AlwaysStrictlyIncreasing fuzzes the normalizer with noisy
// unordered input and checks the output gap invariant.
func TestNormalize_AlwaysStrictlyIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(300)
		raw := make([]float64, n)
		for i := range raw {
			raw[i] = math.Round(rng.Float64()*1000) / 10
			if rng.Intn(10) == 0 && i > 0 {
				raw[i] = raw[i-1] + rng.Float64()*1e-7
			}
		}
		maxEvents := rng.Intn(50)

		got, _, err := timeline.Normalize(raw, timeline.NormalizeOptions{MaxEvents: maxEvents, Duration: 10})
		require.NoError(t, err)
		assert.True(t, got.Valid(timeline.DefaultEpsilon), "trial %d produced %v", trial, got)
		if maxEvents > 0 {
			assert.LessOrEqual(t, len(got), max(maxEvents, 2))
		}
	}
}

func TestSeriesDuration(t *testing.T) {
	assert.Equal(t, 0.0, timeline.Series{4}.Duration())
	assert.InDelta(t, 9.5, timeline.Series{0.5, 3, 10}.Duration(), 1e-12)
}
