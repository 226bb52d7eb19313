package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"framesync/internal/services"
)

// timeLayout is fixed-width so created_at sorts and compares as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = `id, source, path_a, path_b, events_a, events_b, fallback_a, fallback_b,
    pairs, cost, segments_built, segment_count, relax_rounds, elapsed_ms,
    settings_json, map_json, created_at`

// ErrAmbiguousID indicates an ID prefix that matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Record inserts run, assigning a new ID and creation time when unset.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("record run: nil run")
	}
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	settings, err := encodeSettings(run.Settings)
	if err != nil {
		return err
	}
	mapJSON, err := encodeMap(run.Map)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.PathA,
		run.PathB,
		run.EventsA,
		run.EventsB,
		boolToInt(run.FallbackA),
		boolToInt(run.FallbackB),
		run.Pairs,
		run.Cost,
		run.SegmentsBuilt,
		len(run.Map),
		run.RelaxRounds,
		run.Elapsed.Milliseconds(),
		settings,
		mapJSON,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the run whose ID equals or uniquely starts with id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrNotFound, "runs", "get", "Empty run id", nil)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	switch {
	case len(runs) == 0:
		return nil, services.Wrap(services.ErrNotFound, "runs", "get", fmt.Sprintf("No run with id %q", id), nil)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
	return &runs[0], nil
}

// List returns runs newest first. A limit of zero or less returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Remove deletes the run identified by id (or a unique prefix of it).
func (s *Store) Remove(ctx context.Context, id string) (*Run, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return nil, fmt.Errorf("delete run: %w", err)
	}
	return run, nil
}

// Prune deletes runs created before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run                  Run
			fallbackA, fallbackB int
			segmentCount         int
			elapsedMS            int64
			settings, mapJSON    string
			created              string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Source,
			&run.PathA,
			&run.PathB,
			&run.EventsA,
			&run.EventsB,
			&fallbackA,
			&fallbackB,
			&run.Pairs,
			&run.Cost,
			&run.SegmentsBuilt,
			&segmentCount,
			&run.RelaxRounds,
			&elapsedMS,
			&settings,
			&mapJSON,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.FallbackA = fallbackA != 0
		run.FallbackB = fallbackB != 0
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond

		var err error
		if run.Settings, err = decodeSettings(settings); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		if run.Map, err = decodeMap(mapJSON); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: parse created_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
