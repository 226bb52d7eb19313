package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlignment() error {
	a := c.Alignment
	if !finite(a.GapPenalty) || a.GapPenalty < 0 {
		return errors.New("alignment.gap_penalty must be a non-negative number")
	}
	if !finite(a.OffsetTolerance) || a.OffsetTolerance <= 0 {
		return errors.New("alignment.offset_tolerance must be positive")
	}
	if a.MinPairs < 1 {
		return errors.New("alignment.min_pairs must be at least 1")
	}
	if !finite(a.Epsilon) || a.Epsilon <= 0 {
		return errors.New("alignment.epsilon must be positive")
	}
	if a.MaxEvents < 0 || a.MaxEvents == 1 {
		return errors.New("alignment.max_events must be 0 (unlimited) or at least 2")
	}
	if !finite(a.Smoothing) || a.Smoothing <= 0 || a.Smoothing >= 1 {
		return errors.New("alignment.smoothing must be between 0 and 1 (exclusive)")
	}
	if !finite(a.MergeSlopeTolerance) || a.MergeSlopeTolerance <= 0 {
		return errors.New("alignment.merge_slope_tolerance must be positive")
	}
	if !finite(a.MergeInterceptTolerance) || a.MergeInterceptTolerance <= 0 {
		return errors.New("alignment.merge_intercept_tolerance must be positive")
	}
	if a.MaxGridCells <= 0 {
		return errors.New("alignment.max_grid_cells must be positive")
	}
	if a.MaxEvents > 0 && (a.MaxEvents+1) > a.MaxGridCells/(a.MaxEvents+1) {
		return fmt.Errorf("alignment.max_events %d needs a larger alignment.max_grid_cells than %d", a.MaxEvents, a.MaxGridCells)
	}
	return nil
}

func (c *Config) validateProbe() error {
	if c.Probe.TimeoutSeconds <= 0 {
		return errors.New("probe.timeout_seconds must be positive")
	}
	if !finite(c.Probe.AssumedFPS) || c.Probe.AssumedFPS <= 0 {
		return errors.New("probe.assumed_fps must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.RetentionDays < 0 {
		return errors.New("store.retention_days must be zero (keep forever) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
