package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"framesync/internal/config"
	"framesync/internal/engine"
	"framesync/internal/export"
	"framesync/internal/logging"
	"framesync/internal/runstore"
	"framesync/internal/services"
	"framesync/internal/timemap"
)

type alignFlags struct {
	out        string
	pairs      string
	fps        float64
	relax      int
	jsonOutput bool
	noRecord   bool
	refresh    bool

	gapPenalty float64
	offsetTol  float64
	minPairs   int
	maxEvents  int
}

func (f *alignFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.out, "out", "o", "", "Write the time map as JSON to this path")
	flags.StringVar(&f.pairs, "pairs", "", "Write matched pairs as CSV to this path")
	flags.Float64Var(&f.fps, "fps", 0, "Frame rate for offset_frames (default: probed rate, then probe.assumed_fps)")
	flags.IntVar(&f.relax, "relax", 0, "Relax segmentation up to N times when no segment is found")
	flags.BoolVar(&f.jsonOutput, "json", false, "Print the result as JSON")
	flags.BoolVar(&f.noRecord, "no-record", false, "Do not record the run in the history database")
	flags.Float64Var(&f.gapPenalty, "gap-penalty", 0, "Override alignment.gap_penalty")
	flags.Float64Var(&f.offsetTol, "offset-tol", 0, "Override alignment.offset_tolerance (seconds)")
	flags.IntVar(&f.minPairs, "min-pairs", 0, "Override alignment.min_pairs")
	flags.IntVar(&f.maxEvents, "max-events", 0, "Override alignment.max_events (0 = unlimited)")
}

// settings applies explicitly set override flags to the configured alignment
// settings and validates the result.
func (f *alignFlags) settings(cmd *cobra.Command, cfg *config.Config) (config.Alignment, error) {
	merged := *cfg
	flags := cmd.Flags()
	if flags.Changed("gap-penalty") {
		merged.Alignment.GapPenalty = f.gapPenalty
	}
	if flags.Changed("offset-tol") {
		merged.Alignment.OffsetTolerance = f.offsetTol
	}
	if flags.Changed("min-pairs") {
		merged.Alignment.MinPairs = f.minPairs
	}
	if flags.Changed("max-events") {
		merged.Alignment.MaxEvents = f.maxEvents
	}
	if f.relax < 0 {
		return config.Alignment{}, services.Wrap(services.ErrConfiguration, "align", "flags", "--relax must not be negative", nil)
	}
	if err := merged.Validate(); err != nil {
		return config.Alignment{}, services.Wrap(services.ErrConfiguration, "align", "flags", "", err)
	}
	return merged.Alignment, nil
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	flags := &alignFlags{}
	cmd := &cobra.Command{
		Use:   "align <media-a> <media-b>",
		Short: "Build a time map from the keyframes of two media files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			settings, err := flags.settings(cmd, cfg)
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)
			a, b, err := probePair(cmd.Context(), cfg, ctx.probeCache(cmd), logger, args[0], args[1], flags.refresh)
			if err != nil {
				return err
			}
			return runAlignment(cmd, ctx, runstore.SourceMedia, a, b, settings, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "Ignore cached probes and run ffprobe again")
	return cmd
}

func newAlignSeriesCommand(ctx *commandContext) *cobra.Command {
	flags := &alignFlags{}
	var durationA, durationB float64
	cmd := &cobra.Command{
		Use:   "align-series <a.json> <b.json>",
		Short: "Build a time map from two JSON arrays of event timestamps",
		Long: "Build a time map from two JSON files, each holding an array of event\n" +
			"timestamps in seconds. Use --duration-a/--duration-b to allow the\n" +
			"two-point fallback when a series turns out empty.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.settings(cmd, ctx.config)
			if err != nil {
				return err
			}
			a, err := readSeriesFile(args[0])
			if err != nil {
				return err
			}
			b, err := readSeriesFile(args[1])
			if err != nil {
				return err
			}
			a.Duration = durationA
			b.Duration = durationB
			return runAlignment(cmd, ctx, runstore.SourceSeries, a, b, settings, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&durationA, "duration-a", 0, "Duration of timeline A in seconds")
	cmd.Flags().Float64Var(&durationB, "duration-b", 0, "Duration of timeline B in seconds")
	return cmd
}

func readSeriesFile(path string) (seriesInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return seriesInput{}, services.Wrap(services.ErrInput, "series", "read", fmt.Sprintf("Series file %s not found", path), err)
		}
		return seriesInput{}, services.Wrap(services.ErrInput, "series", "read", "", err)
	}
	var events []float64
	if err := json.Unmarshal(data, &events); err != nil {
		return seriesInput{}, services.Wrap(services.ErrInput, "series", "parse",
			fmt.Sprintf("%s must hold a JSON array of seconds", path), err)
	}
	return seriesInput{Path: path, Events: events}, nil
}

type alignSummary struct {
	RunID         string      `json:"run_id,omitempty"`
	Source        string      `json:"source"`
	A             seriesInput `json:"a"`
	B             seriesInput `json:"b"`
	EventsA       int         `json:"events_a"`
	EventsB       int         `json:"events_b"`
	FallbackA     bool        `json:"fallback_a"`
	FallbackB     bool        `json:"fallback_b"`
	Pairs         int         `json:"pairs"`
	Cost          float64     `json:"cost"`
	MeanOffset    float64     `json:"mean_offset"`
	SegmentsBuilt int         `json:"segments_built"`
	RelaxRounds   int         `json:"relax_rounds"`
	Empty         bool        `json:"segmentation_empty"`
	Segments      timemap.Map `json:"segments"`
	ElapsedMS     int64       `json:"elapsed_ms"`
	MapPath       string      `json:"map_path,omitempty"`
	PairsPath     string      `json:"pairs_path,omitempty"`
}

func runAlignment(cmd *cobra.Command, ctx *commandContext, source string, a, b seriesInput, settings config.Alignment, flags *alignFlags) error {
	cfg := ctx.config
	runID := uuid.NewString()
	runCtx := services.WithStage(services.WithRunID(cmd.Context(), runID), "align")
	logger := logging.WithContext(runCtx, ctx.loggerFor(cmd))

	report, err := engine.Run(runCtx, engine.Input{
		A:         a.Events,
		B:         b.Events,
		DurationA: a.Duration,
		DurationB: b.Duration,
	}, settings, logger)
	if err != nil {
		return err
	}

	rounds := 0
	for report.SegmentationEmpty() && rounds < flags.relax {
		settings = engine.Relax(settings)
		report = engine.Resegment(report, settings)
		rounds++
		logger.Info("segmentation relaxed",
			logging.Int("round", rounds),
			logging.Float64("offset_tolerance", settings.OffsetTolerance),
			logging.Int("min_pairs", settings.MinPairs),
			logging.Int("segments", len(report.Map)))
	}

	summary := alignSummary{
		Source:        source,
		A:             a,
		B:             b,
		EventsA:       report.EventsA,
		EventsB:       report.EventsB,
		FallbackA:     report.FallbackA,
		FallbackB:     report.FallbackB,
		Pairs:         report.Alignment.Matches(),
		Cost:          report.Alignment.Cost,
		MeanOffset:    report.Alignment.Stats().Mean,
		SegmentsBuilt: report.SegmentsBuilt,
		RelaxRounds:   rounds,
		Empty:         report.SegmentationEmpty(),
		Segments:      report.Map,
		ElapsedMS:     report.Elapsed.Milliseconds(),
	}
	if summary.Segments == nil {
		summary.Segments = timemap.Map{}
	}

	if path := strings.TrimSpace(flags.out); path != "" {
		if err := export.WriteMapFile(path, report.Map); err != nil {
			return fmt.Errorf("write time map: %w", err)
		}
		summary.MapPath = path
	}
	if path := strings.TrimSpace(flags.pairs); path != "" {
		fps := resolveFPS(flags.fps, a.FrameRate, cfg.Probe.AssumedFPS)
		if err := export.WritePairsFile(path, report.Alignment.Pairs, fps); err != nil {
			return fmt.Errorf("write pairs: %w", err)
		}
		summary.PairsPath = path
	}

	if cfg.Store.Enabled && !flags.noRecord {
		if err := recordRun(runCtx, ctx, runID, source, a.Path, b.Path, report, rounds); err != nil {
			logging.WarnWithContext(logger, "failed to record run", "run_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on paths.data_dir"),
				logging.String(logging.FieldImpact, "run will not appear in framesync runs list"))
		} else {
			summary.RunID = runID
		}
	}

	if flags.jsonOutput {
		return writeJSON(cmd, summary)
	}
	printAlignSummary(cmd, summary)
	return nil
}

func recordRun(runCtx context.Context, ctx *commandContext, runID, source, pathA, pathB string, report *engine.Report, rounds int) error {
	return ctx.withStore(func(store *runstore.Store) error {
		run := runstore.NewRun(source, pathA, pathB, report, rounds)
		run.ID = runID
		if err := store.Record(runCtx, &run); err != nil {
			return err
		}
		if days := ctx.config.Store.RetentionDays; days > 0 {
			cutoff := time.Now().AddDate(0, 0, -days)
			if _, err := store.Prune(runCtx, cutoff); err != nil {
				return err
			}
		}
		return nil
	})
}

// resolveFPS picks the frame rate used for frame offsets: the explicit flag,
// then the rate probed from media A, then the configured assumption.
func resolveFPS(flag, probed, assumed float64) float64 {
	switch {
	case flag > 0:
		return flag
	case probed > 0:
		return probed
	default:
		return assumed
	}
}

func printAlignSummary(cmd *cobra.Command, s alignSummary) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Timeline A", describeInput(s.A, s.EventsA, s.FallbackA)},
		{"Timeline B", describeInput(s.B, s.EventsB, s.FallbackB)},
		{"Matched pairs", formatCount(s.Pairs)},
		{"Alignment cost", formatSeconds(s.Cost)},
		{"Mean offset", formatOffset(s.MeanOffset) + " s"},
		{"Segments", fmt.Sprintf("%s built, %s after merge", formatCount(s.SegmentsBuilt), formatCount(len(s.Segments)))},
	}
	if s.RelaxRounds > 0 {
		rows = append(rows, []string{"Relax rounds", formatCount(s.RelaxRounds)})
	}
	if s.RunID != "" {
		rows = append(rows, []string{"Run", s.RunID})
	}
	if s.MapPath != "" {
		rows = append(rows, []string{"Time map", s.MapPath})
	}
	if s.PairsPath != "" {
		rows = append(rows, []string{"Pairs", s.PairsPath})
	}
	fmt.Fprintln(out, renderKeyValues(rows))

	if s.Empty {
		fmt.Fprintln(out, "No segment met the minimum pair count; the time map is empty (try --relax 1).")
		return
	}
	fmt.Fprintln(out, renderSegments(s.Segments))
}

func describeInput(in seriesInput, events int, fallback bool) string {
	label := fmt.Sprintf("%s (%s events", in.Path, formatCount(events))
	if in.Cached {
		label += ", cached"
	}
	if fallback {
		label += ", duration fallback"
	}
	return label + ")"
}

func renderSegments(m timemap.Map) string {
	rows := make([][]string, 0, len(m))
	for i, seg := range m {
		rows = append(rows, []string{
			formatCount(i + 1),
			formatTimestamp(seg.AStart),
			formatTimestamp(seg.AEnd),
			formatTimestamp(seg.BStart),
			formatSlope(seg.Slope),
			formatOffset(seg.BStart - seg.AStart),
		})
	}
	return renderTable(
		[]string{"#", "A Start", "A End", "B Start", "Slope", "Offset"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}
