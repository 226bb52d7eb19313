// Package probecache stores probed keyframe series on disk so repeated
// alignments of the same media skip ffprobe.
//
// Each media file owns one JSON entry named after the SHA-256 of its absolute
// path. The entry records a fingerprint key derived from the path, size and
// modification time; a lookup only hits when the media file still matches
// that fingerprint, so edited or replaced files are probed again and their
// entry is overwritten.
//
// Writes go through a temp file and rename while holding an advisory lock on
// the cache directory, so concurrent framesync invocations sharing a cache
// never observe partial entries.
package probecache
