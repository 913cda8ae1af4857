package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// watch: print each committed generation until interrupted.
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream committed generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			snaps, err := store.Watch(ctx)
			if err != nil {
				return err
			}
			for snap := range snaps {
				fmt.Printf("generation=%d entries=%d txn=%s\n",
					snap.Generation(), snap.Len(), snap.TxnID())
			}
			return nil
		},
	}
}
