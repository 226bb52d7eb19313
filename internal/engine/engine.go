package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"framesync/internal/align"
	"framesync/internal/config"
	"framesync/internal/logging"
	"framesync/internal/segment"
	"framesync/internal/services"
	"framesync/internal/timeline"
	"framesync/internal/timemap"
)

// Input carries the raw event timestamps of both timelines. The durations
// feed the two-point fallback used when a series has no usable events.
type Input struct {
	A         []float64
	B         []float64
	DurationA float64
	DurationB float64
}

// Report summarizes one pipeline run.
type Report struct {
	Map       timemap.Map
	Alignment align.Result
	Settings  config.Alignment

	EventsA   int
	EventsB   int
	FallbackA bool
	FallbackB bool

	// SegmentsBuilt counts segments before merging; len(Map) counts after.
	SegmentsBuilt int
	Elapsed       time.Duration
}

// SegmentationEmpty reports whether no run met the minimum pair count.
func (r *Report) SegmentationEmpty() bool {
	return r == nil || len(r.Map) == 0
}

// Run executes normalize, align, build and merge with one explicit settings value.
func Run(ctx context.Context, in Input, cfg config.Alignment, logger *slog.Logger) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "engine"))
	started := time.Now()

	a, fallbackA, err := normalize("series a", in.A, in.DurationA, cfg)
	if err != nil {
		return nil, err
	}
	b, fallbackB, err := normalize("series b", in.B, in.DurationB, cfg)
	if err != nil {
		return nil, err
	}
	if fallbackA || fallbackB {
		logging.WarnWithContext(logger, "event series replaced by duration fallback", "series_fallback",
			logging.Bool("fallback_a", fallbackA),
			logging.Bool("fallback_b", fallbackB),
			logging.String(logging.FieldErrorHint, "check that the probe found keyframes in both inputs"),
			logging.String(logging.FieldImpact, "time map reflects only overall duration"),
		)
	}
	logger.Debug("series normalized",
		logging.Int("events_a", len(a)),
		logging.Int("events_b", len(b)),
		logging.Int("raw_a", len(in.A)),
		logging.Int("raw_b", len(in.B)),
	)

	result, err := align.Align(ctx, a, b, align.Options{GapPenalty: cfg.GapPenalty, MaxCells: cfg.MaxGridCells})
	if err != nil {
		return nil, wrapAlignError(err)
	}
	stats := result.Stats()
	logger.Info("series aligned",
		logging.Int("pairs", result.Matches()),
		logging.Float64("cost", result.Cost),
		logging.Float64("mean_offset", stats.Mean),
	)

	report := &Report{
		Alignment: result,
		EventsA:   len(a),
		EventsB:   len(b),
		FallbackA: fallbackA,
		FallbackB: fallbackB,
	}
	report.segment(cfg)
	report.Elapsed = time.Since(started)
	logReport(logger, report)
	return report, nil
}

// Resegment rebuilds the time map of report from its existing alignment using
// cfg. The alignment itself is reused; report is not modified.
func Resegment(report *Report, cfg config.Alignment) *Report {
	if report == nil {
		return nil
	}
	started := time.Now()
	out := *report
	out.segment(cfg)
	out.Elapsed = report.Elapsed + time.Since(started)
	return &out
}

// Relax returns settings more permissive for segmentation: the offset
// tolerance doubles and the minimum pair count drops by one, never below two.
func Relax(cfg config.Alignment) config.Alignment {
	tol := cfg.OffsetTolerance
	if tol <= 0 {
		tol = segment.DefaultOffsetTolerance
	}
	cfg.OffsetTolerance = tol * 2
	minPairs := cfg.MinPairs
	if minPairs <= 0 {
		minPairs = segment.DefaultMinPairs
	}
	cfg.MinPairs = max(2, minPairs-1)
	return cfg
}

func (r *Report) segment(cfg config.Alignment) {
	built := segment.Build(r.Alignment.Pairs, segment.Options{
		OffsetTolerance: cfg.OffsetTolerance,
		MinPairs:        cfg.MinPairs,
		Smoothing:       cfg.Smoothing,
	})
	r.SegmentsBuilt = len(built)
	r.Map = segment.Merge(built, segment.MergeOptions{
		SlopeTolerance:     cfg.MergeSlopeTolerance,
		InterceptTolerance: cfg.MergeInterceptTolerance,
	})
	r.Settings = cfg
}

func normalize(label string, raw []float64, duration float64, cfg config.Alignment) (timeline.Series, bool, error) {
	series, fallback, err := timeline.Normalize(raw, timeline.NormalizeOptions{
		Epsilon:   cfg.Epsilon,
		MaxEvents: cfg.MaxEvents,
		Duration:  duration,
	})
	if err != nil {
		return nil, false, services.Wrap(services.ErrInput, "normalize", label,
			"No usable events and no duration to fall back on", err)
	}
	return series, fallback, nil
}

func wrapAlignError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, align.ErrInfeasible):
		return services.Wrap(services.ErrInfeasible, "align", "edit distance", "", err)
	case errors.Is(err, align.ErrGridTooLarge), errors.Is(err, align.ErrBadPenalty):
		return services.Wrap(services.ErrConfiguration, "align", "edit distance",
			"Lower max_events or raise max_grid_cells", err)
	default:
		return services.Wrap(services.ErrInput, "align", "edit distance", "", err)
	}
}

func logReport(logger *slog.Logger, report *Report) {
	if report.SegmentationEmpty() {
		logging.WarnWithContext(logger, "no segment met the minimum pair count", "segmentation_empty",
			logging.Int("pairs", report.Alignment.Matches()),
			logging.Int("min_pairs", report.Settings.MinPairs),
			logging.String(logging.FieldErrorHint, "relax offset_tolerance or min_pairs and re-run"),
			logging.String(logging.FieldImpact, "time map is empty"),
		)
		return
	}
	first, last, _ := report.Map.Coverage()
	logger.Info("time map built",
		logging.String(logging.FieldDecisionType, "segmentation"),
		logging.Int("segments_built", report.SegmentsBuilt),
		logging.Int("segments", len(report.Map)),
		logging.Float64("coverage_start", first),
		logging.Float64("coverage_end", last),
		logging.Duration("elapsed", report.Elapsed),
	)
}
