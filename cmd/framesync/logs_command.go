package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"framesync/internal/logs"
	"framesync/internal/services"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		runID  string
		level  string
		follow bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the framesync log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := logs.Filter{RunID: strings.TrimSpace(runID), MinLevel: strings.TrimSpace(level)}
			if err := filter.Validate(); err != nil {
				return services.Wrap(services.ErrInput, "logs", "filter", "", err)
			}
			path := ctx.config.LogFilePath()
			result, err := logs.Tail(path, logs.TailOptions{Limit: lines, Filter: filter})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Records) == 0 && !follow {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			for _, rec := range result.Records {
				printRecord(out, rec, raw)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, filter, 250*time.Millisecond, func(rec logs.Record) {
				printRecord(out, rec, raw)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this run ID (prefix)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON lines unchanged")
	return cmd
}

func printRecord(w io.Writer, rec logs.Record, raw bool) {
	if raw || rec.Message == "" {
		fmt.Fprintln(w, rec.Raw)
		return
	}
	var b strings.Builder
	b.WriteString(rec.Time)
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(rec.Level))
	if rec.Component != "" {
		b.WriteString(" [" + rec.Component + "]")
	}
	b.WriteString(" " + rec.Message)
	if rec.RunID != "" {
		b.WriteString(" run=" + shortRunID(rec.RunID))
	}
	fmt.Fprintln(w, b.String())
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
