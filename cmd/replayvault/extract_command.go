package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"replayvault/internal/contentstore"
	"replayvault/internal/enrich"
	"replayvault/internal/mcpr"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var startFlag int64
	var endFlag int64
	var reextract bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract recording metadata from stored replays",
		Long: "Extract scans recorded replays and reads the metadata embedded " +
			"in each stored archive into the database. Replays that already " +
			"have metadata are skipped unless --reextract is given.",
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
				st, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				runCtx, stop := signalContext(cmd.Context())
				defer stop()

				bar := newProgressBar(-1, "extracting")
				opts := []enrich.Option{
					enrich.WithProgress(func(int64) { bumpProgress(bar) }),
				}
				if reextract {
					opts = append(opts, enrich.WithReextract())
				}

				content := contentstore.New(cfg.Paths.ReplayDir)
				extractor := mcpr.NewExtractor(logger)
				pass, err := enrich.New(st, content, extractor, logger, opts...)
				if err != nil {
					return err
				}

				summary, err := pass.Run(runCtx, startFlag, endFlag)
				finishProgress(bar)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scanned %d replays: %d extracted, %d skipped, %d failed\n",
					summary.Scanned, summary.Extracted, summary.Skipped, summary.Failed)
				if summary.Cancelled {
					fmt.Fprintln(out, "Interrupted; re-run to continue")
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&startFlag, "start", 0, "First replay ID to scan")
	cmd.Flags().Int64Var(&endFlag, "end", -1, "Last replay ID to scan, inclusive (-1 for all recorded)")
	cmd.Flags().BoolVar(&reextract, "reextract", false, "Reprocess replays that already have metadata")
	return cmd
}
