package ffprobe_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"framesync/internal/media/ffprobe"
	"framesync/internal/testsupport"
)

func TestKeyframesFromStubBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript(
		testsupport.FFprobeScript([]float64{0, 2.5, 5.25}, 7.5),
	))
	media := filepath.Join(testsupport.BaseDir(cfg), "movie.mkv")
	testsupport.WriteFile(t, media, 16)

	got, err := ffprobe.Keyframes(context.Background(), cfg.FFprobeBinary(), media)
	if err != nil {
		t.Fatalf("Keyframes: %v", err)
	}
	if len(got) != 3 || got[1] != 2.5 || got[2] != 5.25 {
		t.Fatalf("unexpected keyframes %v", got)
	}

	result, err := ffprobe.Inspect(context.Background(), cfg.FFprobeBinary(), media)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.DurationSeconds() != 7.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}
}

func TestKeyframesSurfacesStderr(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript(testsupport.FailingScript("moov atom not found")))

	_, err := ffprobe.Keyframes(context.Background(), cfg.FFprobeBinary(), "/nonexistent.mp4")
	if err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestEmptyPath(t *testing.T) {
	if _, err := ffprobe.Keyframes(context.Background(), "ffprobe", "  "); !errors.Is(err, ffprobe.ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}
