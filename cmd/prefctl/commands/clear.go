package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("cleared")
			return nil
		},
	}
}
