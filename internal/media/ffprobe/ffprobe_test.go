package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", AvgFrameRate: "24000/1001"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if fps := result.FrameRate(); math.Abs(fps-23.976) > 0.001 {
		t.Fatalf("unexpected frame rate: %v", fps)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", AvgFrameRate: "0/0", RFrameRate: "25", Duration: "60.5"}},
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if result.DurationSeconds() != 60.5 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.FrameRate() != 25 {
		t.Fatalf("expected r_frame_rate fallback, got %v", result.FrameRate())
	}
	if (Result{}).FrameRate() != 0 {
		t.Fatal("expected 0 frame rate without video stream")
	}
}

func TestParseKeyframes(t *testing.T) {
	payload := []byte(`{"frames":[
		{"pts_time":"0.000000","best_effort_timestamp_time":"0.000000"},
		{"pts_time":"N/A","best_effort_timestamp_time":"2.085417"},
		{"best_effort_timestamp_time":"4.170833"},
		{"pts_time":"N/A"},
		{"pts_time":"6.256250"}
	]}`)

	got, err := ParseKeyframes(payload)
	if err != nil {
		t.Fatalf("ParseKeyframes: %v", err)
	}
	want := []float64{0, 2.085417, 4.170833, 6.25625}
	if len(got) != len(want) {
		t.Fatalf("expected %d timestamps, got %v", len(want), got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("timestamp %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestParseKeyframesRejectsGarbage(t *testing.T) {
	if _, err := ParseKeyframes([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
