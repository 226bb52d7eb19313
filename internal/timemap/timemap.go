package timemap

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmpty is returned by operations that need at least one segment.
var ErrEmpty = errors.New("timemap: no segments")

// Segment is one linear piece of a Map.
type Segment struct {
	AStart float64 `json:"a_start"`
	AEnd   float64 `json:"a_end"`
	BStart float64 `json:"b_start"`
	Slope  float64 `json:"slope"`
}

// Project maps tA through the segment's affine model, without range checks.
func (s Segment) Project(tA float64) float64 {
	return s.Slope*(tA-s.AStart) + s.BStart
}

// Contains reports whether tA lies within [AStart, AEnd].
func (s Segment) Contains(tA float64) bool {
	return tA >= s.AStart && tA <= s.AEnd
}

// Span returns AEnd - AStart.
func (s Segment) Span() float64 { return s.AEnd - s.AStart }

// Map is the finished, ordered segment list.
type Map []Segment

// At projects tA into timeline B. It returns false only when the map is empty.
func (m Map) At(tA float64) (float64, bool) {
	idx := m.segmentIndex(tA)
	if idx < 0 {
		return 0, false
	}
	return m[idx].Project(tA), true
}

// OffsetAt returns tB - tA at tA.
func (m Map) OffsetAt(tA float64) (float64, bool) {
	tB, ok := m.At(tA)
	if !ok {
		return 0, false
	}
	return tB - tA, true
}

// FrameOffsetAt returns the offset at tA expressed in whole frames at fps.
func (m Map) FrameOffsetAt(tA, fps float64) (int, bool) {
	off, ok := m.OffsetAt(tA)
	if !ok || fps <= 0 {
		return 0, false
	}
	return int(math.Round(off * fps)), true
}

// Segment returns the segment used to answer a query at tA.
func (m Map) Segment(tA float64) (Segment, bool) {
	idx := m.segmentIndex(tA)
	if idx < 0 {
		return Segment{}, false
	}
	return m[idx], true
}

// Index returns the position of the segment used to answer a query at tA,
// or -1 for an empty map.
func (m Map) Index(tA float64) int {
	return m.segmentIndex(tA)
}

// Coverage returns the first AStart and the last AEnd.
func (m Map) Coverage() (float64, float64, bool) {
	if len(m) == 0 {
		return 0, 0, false
	}
	return m[0].AStart, m[len(m)-1].AEnd, true
}

// segmentIndex locates the segment governing tA: the first one containing it,
// the first or last for out-of-range values, or the nearest across a gap with
// ties going to the earlier segment.
func (m Map) segmentIndex(tA float64) int {
	if len(m) == 0 {
		return -1
	}
	// Last segment whose AStart <= tA.
	lo, hi := 0, len(m)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if m[mid].AStart <= tA {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	switch {
	case idx < 0:
		return 0
	case tA <= m[idx].AEnd:
		for idx > 0 && m[idx-1].Contains(tA) {
			idx--
		}
		return idx
	case idx == len(m)-1:
		return idx
	}
	if tA-m[idx].AEnd <= m[idx+1].AStart-tA {
		return idx
	}
	return idx + 1
}

// Validate checks ordering and numeric sanity of the map.
func (m Map) Validate() error {
	for i, s := range m {
		for _, v := range []float64{s.AStart, s.AEnd, s.BStart, s.Slope} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("timemap: segment %d has non-finite value", i)
			}
		}
		if s.Slope <= 0 {
			return fmt.Errorf("timemap: segment %d slope %g must be positive", i, s.Slope)
		}
		if s.AEnd < s.AStart {
			return fmt.Errorf("timemap: segment %d ends (%g) before it starts (%g)", i, s.AEnd, s.AStart)
		}
		if i > 0 && s.AStart < m[i-1].AStart {
			return fmt.Errorf("timemap: segment %d starts before segment %d", i, i-1)
		}
	}
	return nil
}
