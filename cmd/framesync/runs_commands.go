package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"framesync/internal/export"
	"framesync/internal/runstore"
	"framesync/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded alignment runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsRemoveCommand(ctx))
	runsCmd.AddCommand(newRunsPruneCommand(ctx))

	return runsCmd
}

type runView struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	PathA         string    `json:"path_a"`
	PathB         string    `json:"path_b"`
	EventsA       int       `json:"events_a"`
	EventsB       int       `json:"events_b"`
	Pairs         int       `json:"pairs"`
	Cost          float64   `json:"cost"`
	SegmentsBuilt int       `json:"segments_built"`
	Segments      int       `json:"segments"`
	RelaxRounds   int       `json:"relax_rounds"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

func newRunView(run runstore.Run) runView {
	return runView{
		ID:            run.ID,
		Source:        run.Source,
		PathA:         run.PathA,
		PathB:         run.PathB,
		EventsA:       run.EventsA,
		EventsB:       run.EventsB,
		Pairs:         run.Pairs,
		Cost:          run.Cost,
		SegmentsBuilt: run.SegmentsBuilt,
		Segments:      len(run.Map),
		RelaxRounds:   run.RelaxRounds,
		ElapsedMS:     run.Elapsed.Milliseconds(),
		CreatedAt:     run.CreatedAt,
	}
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunView(run))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ShortID(),
						run.CreatedAt.Local().Format("2006-01-02 15:04"),
						titleCase(run.Source),
						shortenPath(run.PathA),
						shortenPath(run.PathB),
						formatCount(run.Pairs),
						formatCount(len(run.Map)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Created", "Source", "A", "B", "Pairs", "Segments"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its time map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if path := strings.TrimSpace(outPath); path != "" {
					if err := export.WriteMapFile(path, run.Map); err != nil {
						return fmt.Errorf("write time map: %w", err)
					}
				}
				if jsonOutput {
					return writeJSON(cmd, struct {
						runView
						Settings any `json:"settings"`
						Map      any `json:"map"`
					}{newRunView(*run), run.Settings, run.Map})
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", run.ID},
					{"Created", run.CreatedAt.Local().Format(time.RFC1123)},
					{"Source", titleCase(run.Source)},
					{"Timeline A", fmt.Sprintf("%s (%s events)", run.PathA, formatCount(run.EventsA))},
					{"Timeline B", fmt.Sprintf("%s (%s events)", run.PathB, formatCount(run.EventsB))},
					{"Matched pairs", formatCount(run.Pairs)},
					{"Alignment cost", formatSeconds(run.Cost)},
					{"Gap penalty", strconv.FormatFloat(run.Settings.GapPenalty, 'f', -1, 64)},
					{"Offset tolerance", strconv.FormatFloat(run.Settings.OffsetTolerance, 'f', -1, 64)},
					{"Min pairs", strconv.Itoa(run.Settings.MinPairs)},
					{"Relax rounds", strconv.Itoa(run.RelaxRounds)},
					{"Elapsed", run.Elapsed.String()},
				}
				if path := strings.TrimSpace(outPath); path != "" {
					rows = append(rows, []string{"Time map", path})
				}
				fmt.Fprintln(out, renderKeyValues(rows))
				if len(run.Map) == 0 {
					fmt.Fprintln(out, "Time map is empty")
					return nil
				}
				fmt.Fprintln(out, renderSegments(run.Map))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Also write the stored time map as JSON to this path")
	return cmd
}

func newRunsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove recorded runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					run, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed run %s\n", run.ID)
				}
				return nil
			})
		},
	}
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove runs older than an age",
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return services.Wrap(services.ErrInput, "runs", "prune", "", err)
			}
			return ctx.withStore(func(store *runstore.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-age))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s run(s) older than %s\n", formatCount(int(removed)), olderThan)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Age threshold: days (\"30d\") or a Go duration (\"12h\")")
	return cmd
}

// parseAge accepts "<N>d" day counts or anything time.ParseDuration accepts.
func parseAge(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", raw)
	}
	return d, nil
}

// shortenPath keeps the tail of long paths so table columns stay readable.
func shortenPath(path string) string {
	const maxLen = 40
	runes := []rune(path)
	if len(runes) <= maxLen {
		return path
	}
	return "…" + string(runes[len(runes)-maxLen+1:])
}
