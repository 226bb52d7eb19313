// Package logs reads back the JSON log file written by the logging package.
//
// Tail returns the last N records with bounded memory, optionally filtered by
// run ID or minimum level, and Follow polls for records appended afterwards.
// Lines that are not JSON objects are kept with only their raw text so a
// partially written or hand-edited file still displays.
package logs
