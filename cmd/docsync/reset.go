package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localmind-ai/file-uploader/internal/sync"
	"github.com/localmind-ai/file-uploader/internal/utils"
)

func init() {
	rootCmd.AddCommand(newResetCmd())
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Move the tracking state aside to force a full re-sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			trackingFile, err := utils.ResolvePath(cmd.Flag("tracking-file").Value.String())
			if err != nil {
				return err
			}

			store := sync.NewTrackingStore(trackingFile)
			if err := store.Lock(); err != nil {
				return err
			}
			defer store.Unlock()

			if err := store.Destroy(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s tracking state reset, next run will re-sync everything\n", green("✔"))
			return nil
		},
	}
}
