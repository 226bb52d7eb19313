// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no framesync-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed container probe with streams and format metadata
//   - Frame: one keyframe entry from a frame-level probe
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Keyframes: executes ffprobe with keyframe-only decoding of the first
//     video stream and returns the keyframe presentation timestamps
package ffprobe
