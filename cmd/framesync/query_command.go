package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"framesync/internal/services"
	"framesync/internal/timemap"
)

type queryResult struct {
	TA           float64 `json:"t_a"`
	TB           float64 `json:"t_b"`
	Offset       float64 `json:"offset"`
	OffsetFrames *int    `json:"offset_frames,omitempty"`
	Segment      int     `json:"segment"`
	Inside       bool    `json:"inside"`
}

func newQueryCommand() *cobra.Command {
	var fps float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "query <map.json> <seconds>...",
		Short:       "Project timeline A timestamps through a saved time map",
		Args:        cobra.MinimumNArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := timemap.Load(args[0])
			if err != nil {
				return services.Wrap(services.ErrInput, "query", "load map", "", err)
			}
			if len(m) == 0 {
				return services.Wrap(services.ErrInput, "query", "load map", "Time map is empty", timemap.ErrEmpty)
			}

			results := make([]queryResult, 0, len(args)-1)
			for _, raw := range args[1:] {
				tA, err := parseTimestamp(raw)
				if err != nil {
					return services.Wrap(services.ErrInput, "query", "parse", "", err)
				}
				tB, _ := m.At(tA)
				idx := m.Index(tA)
				result := queryResult{TA: tA, TB: tB, Offset: tB - tA, Segment: idx + 1, Inside: m[idx].Contains(tA)}
				if fps > 0 {
					frames, _ := m.FrameOffsetAt(tA, fps)
					result.OffsetFrames = &frames
				}
				results = append(results, result)
			}

			if jsonOutput {
				return writeJSON(cmd, results)
			}
			headers := []string{"A", "B", "Offset", "Segment"}
			if fps > 0 {
				headers = append(headers, "Frames")
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				segment := formatCount(r.Segment)
				if !r.Inside {
					segment += " (nearest)"
				}
				row := []string{formatSeconds(r.TA), formatSeconds(r.TB), formatOffset(r.Offset), segment}
				if r.OffsetFrames != nil {
					row = append(row, fmt.Sprintf("%+d", *r.OffsetFrames))
				}
				rows = append(rows, row)
			}
			aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
	cmd.Flags().Float64Var(&fps, "fps", 0, "Also report the offset in frames at this rate")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

// parseTimestamp accepts plain seconds ("754.2") or clock notation
// ("12:34.2", "1:02:03.5").
func parseTimestamp(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", raw)
	}
	total := 0.0
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", raw)
		}
		if i < len(parts)-1 && v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid timestamp %q", raw)
		}
		total = total*60 + v
	}
	return total, nil
}
