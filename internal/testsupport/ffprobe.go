package testsupport

import (
	"fmt"
	"strings"
)

// FFprobeScript returns a stub ffprobe script that answers keyframe queries
// with the given timestamps and container queries with the given duration.
func FFprobeScript(keyframes []float64, duration float64) string {
	frames := make([]string, 0, len(keyframes))
	for _, ts := range keyframes {
		frames = append(frames, fmt.Sprintf(`{"pts_time":"%.6f","best_effort_timestamp_time":"%.6f"}`, ts, ts))
	}
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("case \"$*\" in\n")
	b.WriteString("*skip_frame*)\n")
	fmt.Fprintf(&b, "cat <<'JSON'\n{\"frames\":[%s]}\nJSON\n;;\n", strings.Join(frames, ","))
	b.WriteString("*)\n")
	fmt.Fprintf(&b, "cat <<'JSON'\n{\"streams\":[{\"index\":0,\"codec_type\":\"video\",\"codec_name\":\"h264\",\"avg_frame_rate\":\"24000/1001\"}],\"format\":{\"duration\":\"%.6f\"}}\nJSON\n;;\n", duration)
	b.WriteString("esac\n")
	return b.String()
}

// FailingScript returns a stub that prints message to stderr and exits 1.
func FailingScript(message string) string {
	return fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit 1\n", message)
}
