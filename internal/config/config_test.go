package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"framesync/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "framesync", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "framesync")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "framesync", "probes") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.RunStorePath() != filepath.Join(wantData, "runs.db") {
		t.Fatalf("unexpected run store path: %q", cfg.RunStorePath())
	}
	if cfg.Alignment.GapPenalty != 0.4 || cfg.Alignment.OffsetTolerance != 0.25 || cfg.Alignment.MinPairs != 3 {
		t.Fatalf("unexpected alignment defaults: %+v", cfg.Alignment)
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	custom := config.Default()
	custom.Paths.DataDir = "~/runs"
	custom.Alignment.GapPenalty = 0.9
	custom.Alignment.MinPairs = 5
	custom.Logging.Level = "DEBUG"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "runs") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Alignment.GapPenalty != 0.9 || cfg.Alignment.MinPairs != 5 {
		t.Fatalf("custom alignment values not applied: %+v", cfg.Alignment)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level to be normalized, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[alignment]\ngap_penalti = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestEnvOverridesFFprobeBinary(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FRAMESYNC_FFPROBE", " /opt/ffmpeg/bin/ffprobe ")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("expected env override, got %q", cfg.FFprobeBinary())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	want := config.Default()
	if cfg.Alignment != want.Alignment {
		t.Fatalf("sample alignment section drifted from defaults:\n got %+v\nwant %+v", cfg.Alignment, want.Alignment)
	}
	if cfg.Probe != want.Probe {
		t.Fatalf("sample probe section drifted from defaults:\n got %+v\nwant %+v", cfg.Probe, want.Probe)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(data), "gap_penalty = 0.4") {
		t.Fatalf("expected gap_penalty in encoded config:\n%s", data)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative gap", func(c *config.Config) { c.Alignment.GapPenalty = -0.1 }, "gap_penalty"},
		{"zero tolerance", func(c *config.Config) { c.Alignment.OffsetTolerance = 0 }, "offset_tolerance"},
		{"zero min pairs", func(c *config.Config) { c.Alignment.MinPairs = 0 }, "min_pairs"},
		{"zero epsilon", func(c *config.Config) { c.Alignment.Epsilon = 0 }, "epsilon"},
		{"single event cap", func(c *config.Config) { c.Alignment.MaxEvents = 1 }, "max_events"},
		{"smoothing one", func(c *config.Config) { c.Alignment.Smoothing = 1 }, "smoothing"},
		{"merge slope", func(c *config.Config) { c.Alignment.MergeSlopeTolerance = 0 }, "merge_slope_tolerance"},
		{"merge intercept", func(c *config.Config) { c.Alignment.MergeInterceptTolerance = -1 }, "merge_intercept_tolerance"},
		{"grid too small", func(c *config.Config) { c.Alignment.MaxGridCells = 1000 }, "max_grid_cells"},
		{"probe timeout", func(c *config.Config) { c.Probe.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"fps", func(c *config.Config) { c.Probe.AssumedFPS = 0 }, "assumed_fps"},
		{"retention", func(c *config.Config) { c.Store.RetentionDays = -1 }, "retention_days"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error %q", tt.want, err.Error())
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
