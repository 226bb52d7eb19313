package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type probeSummary struct {
	seriesInput
	Keyframes     int       `json:"keyframes"`
	FirstKeyframe float64   `json:"first_keyframe"`
	LastKeyframe  float64   `json:"last_keyframe"`
	Timestamps    []float64 `json:"timestamps,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput, refresh, listAll bool

	cmd := &cobra.Command{
		Use:   "probe <media>",
		Short: "Show the keyframe series of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.loggerFor(cmd)
			in, err := probeMedia(cmd.Context(), ctx.config, ctx.probeCache(cmd), logger, args[0], refresh)
			if err != nil {
				return err
			}

			summary := probeSummary{seriesInput: in, Keyframes: len(in.Events)}
			if n := len(in.Events); n > 0 {
				summary.FirstKeyframe = in.Events[0]
				summary.LastKeyframe = in.Events[n-1]
			}
			if listAll {
				summary.Timestamps = in.Events
			}

			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			rows := [][]string{
				{"File", in.Path},
				{"Duration", formatTimestamp(in.Duration)},
				{"Keyframes", formatCount(summary.Keyframes)},
				{"Frame rate", formatFrameRate(in.FrameRate)},
				{"Cached", yesNo(in.Cached)},
			}
			if summary.Keyframes > 0 {
				rows = append(rows,
					[]string{"First keyframe", formatTimestamp(summary.FirstKeyframe)},
					[]string{"Last keyframe", formatTimestamp(summary.LastKeyframe)},
				)
			}
			fmt.Fprintln(out, renderKeyValues(rows))
			if listAll {
				for _, ts := range in.Events {
					fmt.Fprintln(out, formatSeconds(ts))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore cached probes and run ffprobe again")
	cmd.Flags().BoolVar(&listAll, "list", false, "Also print every keyframe timestamp")
	return cmd
}

func formatFrameRate(fps float64) string {
	if fps <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.3f fps", fps)
}
