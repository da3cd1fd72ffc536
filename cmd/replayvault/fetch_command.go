package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"replayvault/internal/contentstore"
	"replayvault/internal/retrieve"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var hashFlag string

	cmd := &cobra.Command{
		Use:   "fetch [replay-id] [destination]",
		Short: "Copy an archived replay out of the store",
		Long: "Fetch resolves a replay by its numeric ID (or by content hash " +
			"with --sha256) and copies the stored file to the destination " +
			"path. A directory destination keeps the stored file name. " +
			"Existing files are never overwritten.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			content := contentstore.New(cfg.Paths.ReplayDir)
			svc, err := retrieve.New(st, content)
			if err != nil {
				return err
			}

			var resolved retrieve.Resolved
			dest := "."
			if hash := strings.TrimSpace(hashFlag); hash != "" {
				if len(args) != 1 {
					return fmt.Errorf("with --sha256 exactly one argument is expected: the destination path")
				}
				resolved, err = svc.ByHash(hash)
				if err != nil {
					return err
				}
				dest = args[0]
			} else {
				replayID, parseErr := strconv.ParseInt(args[0], 10, 64)
				if parseErr != nil {
					return fmt.Errorf("invalid replay ID %q", args[0])
				}
				resolved, err = svc.ByID(cmd.Context(), replayID)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					dest = args[1]
				}
			}

			out, err := svc.CopyTo(resolved, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&hashFlag, "sha256", "", "Resolve by content hash; the positional argument becomes the destination")
	return cmd
}
