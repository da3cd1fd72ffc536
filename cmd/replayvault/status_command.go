package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Recorded IDs", strconv.FormatInt(stats.Total, 10)},
				{"Downloaded", strconv.FormatInt(stats.Resolved, 10)},
				{"Confirmed absent", strconv.FormatInt(stats.Absent, 10)},
				{"With metadata", strconv.FormatInt(stats.WithMetadata, 10)},
				{"Known players", strconv.FormatInt(stats.Players, 10)},
				{"Archive size", formatBytes(stats.TotalBytes)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
