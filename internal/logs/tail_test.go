package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"framesync/internal/logs"
)

const sampleLog = `{"ts":"2026-01-01T00:00:00Z","level":"info","msg":"probing keyframes","component":"probe"}
{"ts":"2026-01-01T00:00:01Z","level":"debug","msg":"pairs matched","run_id":"aaaa-1111","stage":"align"}
{"ts":"2026-01-01T00:00:02Z","level":"warn","msg":"no segment met the minimum pair count","run_id":"aaaa-1111"}
not json at all
{"ts":"2026-01-01T00:00:03Z","level":"info","msg":"alignment complete","run_id":"bbbb-2222"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framesync.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastRecords(t *testing.T) {
	path := writeLog(t, sampleLog)

	result, err := logs.Tail(path, logs.TailOptions{Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.Records[0].Raw != "not json at all" || result.Records[0].Message != "" {
		t.Fatalf("expected raw fallback record, got %#v", result.Records[0])
	}
	if result.Records[1].Message != "alignment complete" {
		t.Fatalf("unexpected last record %#v", result.Records[1])
	}
	if result.Offset != int64(len(sampleLog)) {
		t.Fatalf("offset %d, want %d", result.Offset, len(sampleLog))
	}
}

func TestTailFiltersByRunAndLevel(t *testing.T) {
	path := writeLog(t, sampleLog)

	result, err := logs.Tail(path, logs.TailOptions{Limit: 10, Filter: logs.Filter{RunID: "aaaa"}})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Records) != 2 || result.Records[0].Stage != "align" {
		t.Fatalf("unexpected run records %#v", result.Records)
	}

	result, err = logs.Tail(path, logs.TailOptions{Limit: 10, Filter: logs.Filter{MinLevel: "warn"}})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	// The non-JSON line has no level and is kept.
	if len(result.Records) != 2 || result.Records[0].Level != "warn" {
		t.Fatalf("unexpected level records %#v", result.Records)
	}

	if err := (logs.Filter{MinLevel: "loud"}).Validate(); err == nil {
		t.Fatal("expected unknown level to fail validation")
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), logs.TailOptions{Limit: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Records) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestFollowDeliversAppendedRecords(t *testing.T) {
	path := writeLog(t, sampleLog)
	start, err := logs.Tail(path, logs.TailOptions{Limit: 0})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan logs.Record, 4)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, start.Offset, logs.Filter{}, 10*time.Millisecond, func(r logs.Record) {
			got <- r
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString(`{"level":"info","msg":"appended"}` + "\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case rec := <-got:
		if rec.Message != "appended" {
			t.Fatalf("unexpected record %#v", rec)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for appended record")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("follow returned error: %v", err)
	}
}
