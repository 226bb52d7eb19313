// Package timeline cleans raw event timestamps into strictly increasing
// series that the aligner can consume.
//
// Raw timestamps arrive from an external probe in arbitrary order and may
// contain duplicates, near-duplicates, or values that are not finite.
// Normalize sorts, de-duplicates within an epsilon, optionally caps the series
// length by index sampling, and falls back to a synthetic [0, duration] series
// when nothing usable remains but the recording duration is known.
package timeline
