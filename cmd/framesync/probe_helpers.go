package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"framesync/internal/config"
	"framesync/internal/logging"
	"framesync/internal/media/ffprobe"
	"framesync/internal/probecache"
	"framesync/internal/services"
)

// seriesInput is one side of an alignment: its event timestamps plus the
// metadata needed for fallbacks and frame offsets.
type seriesInput struct {
	Path      string    `json:"path"`
	Events    []float64 `json:"-"`
	Duration  float64   `json:"duration"`
	FrameRate float64   `json:"frame_rate,omitempty"`
	Cached    bool      `json:"cached"`
}

func probeMedia(ctx context.Context, cfg *config.Config, cache *probecache.Cache, logger *slog.Logger, path string, refresh bool) (seriesInput, error) {
	logger = logging.NewComponentLogger(logger, "probe")
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return seriesInput{}, services.Wrap(services.ErrInput, "probe", "stat", fmt.Sprintf("Media file %s not found", path), err)
		}
		return seriesInput{}, services.Wrap(services.ErrInput, "probe", "stat", "", err)
	}
	if info.IsDir() {
		return seriesInput{}, services.Wrap(services.ErrInput, "probe", "stat", fmt.Sprintf("%s is a directory", path), nil)
	}

	if !refresh {
		if entry, ok := cache.Lookup(path); ok {
			logger.Debug("probe cache hit", logging.String("path", path), logging.Int("keyframes", len(entry.Keyframes)))
			return seriesInput{
				Path:      path,
				Events:    entry.Keyframes,
				Duration:  entry.Duration,
				FrameRate: entry.FrameRate,
				Cached:    true,
			}, nil
		}
	}

	if timeout := cfg.ProbeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Info("probing keyframes", logging.String("path", path))
	keyframes, err := ffprobe.Keyframes(ctx, cfg.FFprobeBinary(), path)
	if err != nil {
		return seriesInput{}, services.Wrap(services.ErrExternalTool, "probe", "keyframes", "ffprobe could not list keyframes", err)
	}
	result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
	if err != nil {
		return seriesInput{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", "ffprobe could not read the container", err)
	}

	in := seriesInput{
		Path:      path,
		Events:    keyframes,
		Duration:  result.DurationSeconds(),
		FrameRate: result.FrameRate(),
	}
	if _, err := cache.Store(path, in.Duration, in.FrameRate, keyframes); err != nil {
		logging.WarnWithContext(logger, "failed to cache probe result", "probecache_store_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.cache_dir"),
			logging.String(logging.FieldImpact, "the file will be probed again next time"))
	}
	logger.Debug("probe complete",
		logging.String("path", path),
		logging.Int("keyframes", len(keyframes)),
		logging.Float64("duration", in.Duration))
	return in, nil
}

// probePair probes both inputs concurrently and returns them in order.
func probePair(ctx context.Context, cfg *config.Config, cache *probecache.Cache, logger *slog.Logger, pathA, pathB string, refresh bool) (seriesInput, seriesInput, error) {
	paths := [2]string{pathA, pathB}
	var (
		wg      sync.WaitGroup
		results [2]seriesInput
		errs    [2]error
	)
	for i := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = probeMedia(ctx, cfg, cache, logger, paths[i], refresh)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return seriesInput{}, seriesInput{}, err
		}
	}
	return results[0], results[1], nil
}
