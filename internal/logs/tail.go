package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Record is one line of the JSON log file.
type Record struct {
	Time      string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Component string `json:"component,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Raw       string `json:"-"`
}

// Filter selects records by run and severity.
type Filter struct {
	// RunID matches records whose run_id starts with this prefix.
	RunID string
	// MinLevel drops records below this level ("debug", "info", "warn", "error").
	MinLevel string
}

// TailOptions configures Tail.
type TailOptions struct {
	Limit  int
	Filter Filter
}

// TailResult holds the selected records and the file offset after the last
// line read, suitable as the starting point for Follow.
type TailResult struct {
	Records []Record
	Offset  int64
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	if f.RunID != "" && !strings.HasPrefix(r.RunID, f.RunID) {
		return false
	}
	if min, ok := levelRank[strings.ToLower(f.MinLevel)]; ok {
		rank, known := levelRank[r.Level]
		if known && rank < min {
			return false
		}
	}
	return true
}

// Validate rejects unknown level names.
func (f Filter) Validate() error {
	if f.MinLevel == "" {
		return nil
	}
	if _, ok := levelRank[strings.ToLower(f.MinLevel)]; !ok {
		return fmt.Errorf("unknown log level %q", f.MinLevel)
	}
	return nil
}

// ParseRecord decodes one log line. Non-JSON lines yield a record carrying
// only Raw.
func ParseRecord(line string) Record {
	rec := Record{Raw: line}
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		_ = json.Unmarshal([]byte(line), &rec)
	}
	return rec
}

// Tail returns the last opts.Limit matching records of the log at path. A
// missing file yields an empty result. Limit <= 0 returns no records but
// still reports the end offset.
func Tail(path string, opts TailOptions) (TailResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return TailResult{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{}, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Limit <= 0 {
		return TailResult{Offset: info.Size()}, nil
	}

	ring := make([]Record, opts.Limit)
	count, idx := 0, 0
	offset, err := scanLines(file, func(line string) {
		rec := ParseRecord(line)
		if !opts.Filter.Match(rec) {
			return
		}
		ring[idx] = rec
		idx = (idx + 1) % opts.Limit
		if count < opts.Limit {
			count++
		}
	})
	if err != nil {
		return TailResult{}, err
	}

	records := make([]Record, count)
	if count == opts.Limit {
		for i := range count {
			records[i] = ring[(idx+i)%opts.Limit]
		}
	} else {
		copy(records, ring[:count])
	}
	return TailResult{Records: records, Offset: offset}, nil
}

// Follow polls the log from offset and calls fn for every new matching
// record until ctx is done. A truncated file restarts from the beginning.
func Follow(ctx context.Context, path string, offset int64, filter Filter, interval time.Duration, fn func(Record)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, func(line string) {
			if rec := ParseRecord(line); filter.Match(rec) {
				fn(rec)
			}
		})
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanLines(file, fn)
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scanLines feeds complete lines to fn and returns the number of bytes
// consumed. A trailing line without a newline is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		fn(strings.TrimRight(line, "\r\n"))
	}
}
