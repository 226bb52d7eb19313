// Package config loads, normalizes, and validates framesync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FRAMESYNC_FFPROBE. The Config type centralizes every knob the engine and CLI
// need: where runs and probe caches live, the alignment tolerances, and how
// the external probe is invoked.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
