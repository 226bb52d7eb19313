package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"framesync/internal/deps"
	"framesync/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Report availability of external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := deps.CheckBinaries(deps.Requirements(ctx.config))
			missing := deps.MissingRequired(statuses)

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					state := "ok"
					detail := status.Version
					if !status.Available {
						state = "missing"
						detail = status.Detail
						if status.Optional {
							state = "missing (optional)"
						}
					}
					rows = append(rows, []string{status.Name, status.Command, state, detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Dependency", "Command", "Status", "Detail"},
					rows,
					nil,
				))
			}

			if len(missing) > 0 {
				return services.Wrap(services.ErrExternalTool, "deps", "check",
					"Missing required dependencies: "+strings.Join(missing, ", "), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statuses as JSON")
	return cmd
}
