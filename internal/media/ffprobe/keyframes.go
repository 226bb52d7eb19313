package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Frame is one entry of a frame-level probe. Timestamps are strings in
// ffprobe's JSON and may be "N/A" or absent.
type Frame struct {
	PTSTime        string `json:"pts_time"`
	BestEffortTime string `json:"best_effort_timestamp_time"`
}

// Seconds returns the frame's presentation time, preferring pts_time and
// falling back to the best-effort timestamp.
func (f Frame) Seconds() (float64, bool) {
	for _, raw := range []string{f.PTSTime, f.BestEffortTime} {
		v := parseFloat(raw)
		if strings.TrimSpace(raw) == "" || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		return v, true
	}
	return 0, false
}

type framesPayload struct {
	Frames []Frame `json:"frames"`
}

// Keyframes returns the presentation timestamps, in seconds, of the keyframes
// of the first video stream, in the order ffprobe reported them. Frames
// without a usable timestamp are skipped.
func Keyframes(ctx context.Context, binary string, path string) ([]float64, error) {
	output, err := run(ctx, binary, path,
		"-select_streams", "v:0",
		"-skip_frame", "nokey",
		"-show_entries", "frame=pts_time,best_effort_timestamp_time",
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe keyframes: %w", err)
	}
	return ParseKeyframes(output)
}

// ParseKeyframes decodes a frame-level ffprobe JSON payload.
func ParseKeyframes(data []byte) ([]float64, error) {
	var payload framesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("ffprobe parse frames: %w", err)
	}
	out := make([]float64, 0, len(payload.Frames))
	for _, frame := range payload.Frames {
		if ts, ok := frame.Seconds(); ok {
			out = append(out, ts)
		}
	}
	return out, nil
}
