package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localmind-ai/file-uploader/internal/sync"
	"github.com/localmind-ai/file-uploader/internal/utils"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the tracked state per mapping root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			trackingFile, err := utils.ResolvePath(cmd.Flag("tracking-file").Value.String())
			if err != nil {
				return err
			}

			store := sync.NewTrackingStore(trackingFile)
			if err := store.Load(); err != nil {
				return err
			}

			roots := store.Roots()
			if len(roots) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no tracked files in %s\n", cyan(trackingFile))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "tracking state %s\n", cyan(trackingFile))
			for _, root := range roots {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d files\n", root, store.Count(root))
			}
			return nil
		},
	}
}
