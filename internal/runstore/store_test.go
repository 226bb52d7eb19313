package runstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"framesync/internal/config"
	"framesync/internal/engine"
	"framesync/internal/runstore"
	"framesync/internal/services"
	"framesync/internal/testsupport"
	"framesync/internal/timemap"
)

func sampleRun(pathA string) runstore.Run {
	return runstore.Run{
		Source:        runstore.SourceMedia,
		PathA:         pathA,
		PathB:         "/media/b.mkv",
		EventsA:       120,
		EventsB:       118,
		Pairs:         110,
		Cost:          3.25,
		SegmentsBuilt: 3,
		Elapsed:       1500 * time.Millisecond,
		Settings:      config.Default().Alignment,
		Map: timemap.Map{
			{AStart: 0, AEnd: 600, BStart: 1.2, Slope: 1},
			{AStart: 620, AEnd: 1200, BStart: 622.7, Slope: 1.001},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := sampleRun("/media/a.mkv")
	if err := store.Record(ctx, &run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt to be assigned, got %#v", run)
	}

	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.PathA != "/media/a.mkv" || fetched.Pairs != 110 || fetched.Cost != 3.25 {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
	if len(fetched.Map) != 2 || fetched.Map[1].BStart != 622.7 {
		t.Fatalf("time map did not round trip: %#v", fetched.Map)
	}
	if fetched.Settings != config.Default().Alignment {
		t.Fatalf("settings did not round trip: %#v", fetched.Settings)
	}
	if fetched.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected elapsed %v", fetched.Elapsed)
	}
	if !fetched.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", fetched.CreatedAt, run.CreatedAt)
	}

	byPrefix, err := store.Get(ctx, run.ShortID())
	if err != nil {
		t.Fatalf("Get by prefix failed: %v", err)
	}
	if byPrefix.ID != run.ID {
		t.Fatalf("prefix lookup returned %s, want %s", byPrefix.ID, run.ID)
	}
}

func TestGetMissingRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAmbiguousPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abc-2"} {
		run := sampleRun("/media/a.mkv")
		run.ID = id
		if err := store.Record(ctx, &run); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, runstore.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
	run, err := store.Get(ctx, "abc-2")
	if err != nil || run.ID != "abc-2" {
		t.Fatalf("exact id should win: %v %#v", err, run)
	}
}

func TestListRemoveAndPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now().UTC()
	ages := []time.Duration{0, 24 * time.Hour, 40 * 24 * time.Hour, 100 * 24 * time.Hour}
	ids := make([]string, len(ages))
	for i, age := range ages {
		run := sampleRun("/media/a.mkv")
		run.CreatedAt = now.Add(-age)
		if err := store.Record(ctx, &run); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
		ids[i] = run.ID
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 4 || runs[0].ID != ids[0] || runs[3].ID != ids[3] {
		t.Fatalf("expected newest first, got %d runs", len(runs))
	}
	limited, err := store.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List with limit: %v, %d runs", err, len(limited))
	}

	removed, err := store.Remove(ctx, ids[1])
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed.ID != ids[1] {
		t.Fatalf("removed wrong run %s", removed.ID)
	}
	if _, err := store.Remove(ctx, ids[1]); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing twice, got %v", err)
	}

	pruned, err := store.Prune(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected 2 pruned runs, got %d", pruned)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 remaining run, got %d (%v)", count, err)
	}
}

func TestNewRunFromReport(t *testing.T) {
	in := engine.Input{
		A: []float64{0, 2.1, 4.5, 6.2, 9.0},
		B: []float64{0.3, 2.4, 4.8, 6.5, 9.3},
	}
	report, err := engine.Run(context.Background(), in, config.Default().Alignment, nil)
	if err != nil {
		t.Fatalf("engine.Run: %v", err)
	}

	run := runstore.NewRun(runstore.SourceSeries, "a.json", "b.json", report, 1)
	if run.Pairs != 5 || run.EventsA != 5 || run.RelaxRounds != 1 {
		t.Fatalf("unexpected run fields: %#v", run)
	}
	if len(run.Map) != len(report.Map) {
		t.Fatalf("expected map copy, got %d segments", len(run.Map))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := store.Path()
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := runstore.OpenPath(path); !errors.Is(err, runstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if filepath.Base(path) != "runs.db" {
		t.Fatalf("unexpected database name %s", path)
	}
}
