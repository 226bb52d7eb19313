package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached keyframe probes",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached probes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := ctx.probeCache(cmd)
			out := cmd.OutOrStdout()
			if !cache.Enabled() {
				fmt.Fprintln(out, "Probe cache is disabled (probe.cache_enabled = false)")
				return nil
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Probe cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					shortenPath(entry.Path),
					formatCount(len(entry.Keyframes)),
					formatTimestamp(entry.Duration),
					entry.CachedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Keyframes", "Duration", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := ctx.probeCache(cmd).Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached probe(s)\n", formatCount(removed))
			return nil
		},
	}
}
