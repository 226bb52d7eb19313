package runstore

import (
	"encoding/json"
	"fmt"
	"time"

	"framesync/internal/config"
	"framesync/internal/engine"
	"framesync/internal/timemap"
)

// Source values record how the event series were obtained.
const (
	SourceMedia  = "media"
	SourceSeries = "series"
)

// Run is the persisted record of one alignment.
type Run struct {
	ID            string
	Source        string
	PathA         string
	PathB         string
	EventsA       int
	EventsB       int
	FallbackA     bool
	FallbackB     bool
	Pairs         int
	Cost          float64
	SegmentsBuilt int
	RelaxRounds   int
	Elapsed       time.Duration
	Settings      config.Alignment
	Map           timemap.Map
	CreatedAt     time.Time
}

// NewRun captures the outcome of an engine run. ID and CreatedAt are
// assigned by Record.
func NewRun(source, pathA, pathB string, report *engine.Report, relaxRounds int) Run {
	run := Run{
		Source:      source,
		PathA:       pathA,
		PathB:       pathB,
		RelaxRounds: relaxRounds,
	}
	if report == nil {
		return run
	}
	run.EventsA = report.EventsA
	run.EventsB = report.EventsB
	run.FallbackA = report.FallbackA
	run.FallbackB = report.FallbackB
	run.Pairs = report.Alignment.Matches()
	run.Cost = report.Alignment.Cost
	run.SegmentsBuilt = report.SegmentsBuilt
	run.Elapsed = report.Elapsed
	run.Settings = report.Settings
	run.Map = append(timemap.Map(nil), report.Map...)
	return run
}

// ShortID returns the first eight characters of the run ID.
func (r Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// settingsJSON uses the TOML field names so stored settings read like the
// config file they came from.
type settingsJSON struct {
	GapPenalty              float64 `json:"gap_penalty"`
	OffsetTolerance         float64 `json:"offset_tolerance"`
	MinPairs                int     `json:"min_pairs"`
	Epsilon                 float64 `json:"epsilon"`
	MaxEvents               int     `json:"max_events"`
	Smoothing               float64 `json:"smoothing"`
	MergeSlopeTolerance     float64 `json:"merge_slope_tolerance"`
	MergeInterceptTolerance float64 `json:"merge_intercept_tolerance"`
	MaxGridCells            int     `json:"max_grid_cells"`
}

func encodeSettings(cfg config.Alignment) (string, error) {
	data, err := json.Marshal(settingsJSON(cfg))
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return string(data), nil
}

func decodeSettings(raw string) (config.Alignment, error) {
	var s settingsJSON
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return config.Alignment{}, fmt.Errorf("decode settings: %w", err)
	}
	return config.Alignment(s), nil
}

func encodeMap(m timemap.Map) (string, error) {
	if m == nil {
		m = timemap.Map{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode time map: %w", err)
	}
	return string(data), nil
}

func decodeMap(raw string) (timemap.Map, error) {
	var m timemap.Map
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode time map: %w", err)
	}
	return m, nil
}
