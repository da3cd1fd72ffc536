package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"replayvault/internal/contentstore"
	"replayvault/internal/layout"
)

func newMigrateLayoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-layout",
		Short: "Move legacy flat-layout replay files into the sharded store",
		Long: "Earlier versions stored replays as <id>_<sha256>.<ext> in a " +
			"single directory. migrate-layout rehouses those files into the " +
			"sharded layout after verifying each file's content hash. " +
			"Unrecognized or mismatched files are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withArchiveLock(func() error {
				runCtx, stop := signalContext(cmd.Context())
				defer stop()

				migrator := layout.New(contentstore.New(cfg.Paths.ReplayDir), logger)
				report, err := migrator.MigrateFlat(runCtx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Moved %d files, skipped %d\n", report.Moved, report.Skipped)
				if report.Cancelled {
					fmt.Fprintln(out, "Interrupted; re-run to continue")
				}
				return nil
			})
		},
	}
}
