package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"replayvault/internal/contentstore"
	"replayvault/internal/crawl"
	"replayvault/internal/fetch"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var startFlag int64
	var maxFlag int64

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Download replays sequentially from the remote source",
		Long: "Crawl walks replay IDs in order, downloading each file into the " +
			"content store and recording the outcome. Re-running resumes one " +
			"past the highest recorded ID. Interrupt with Ctrl-C; the replay " +
			"in flight finishes before the crawl stops.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			start := startFlag
			if !cmd.Flags().Changed("start") {
				start = cfg.Crawl.StartID
			}
			maxID := maxFlag
			if !cmd.Flags().Changed("max") {
				maxID = cfg.Crawl.MaxID
			}
			if maxID < start {
				return fmt.Errorf("max ID %d is below start ID %d", maxID, start)
			}

			return ctx.withArchiveLock(func() error {
				st, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				content := contentstore.New(cfg.Paths.ReplayDir)
				client, err := fetch.New(cfg.Source.BaseURL, time.Duration(cfg.Source.TimeoutSeconds)*time.Second, content, logger)
				if err != nil {
					return err
				}

				runCtx, stop := signalContext(cmd.Context())
				defer stop()

				bar := newProgressBar(maxID-start+1, "crawling")
				runner, err := crawl.New(st, client, content, cfg.Source.NotFoundStatus, logger,
					crawl.WithProgress(func(int64) { bumpProgress(bar) }))
				if err != nil {
					return err
				}

				summary, err := runner.Run(runCtx, start, maxID)
				finishProgress(bar)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Crawled IDs %d through %d: %d fetched, %d absent, %d failed\n",
					summary.Start, summary.End, summary.Fetched, summary.Absent, summary.Failed)
				if summary.Cancelled {
					fmt.Fprintln(out, "Interrupted; re-run to continue from where this left off")
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&startFlag, "start", 0, "First replay ID to request (default from config)")
	cmd.Flags().Int64Var(&maxFlag, "max", 0, "Last replay ID to request, inclusive (default from config)")
	return cmd
}
