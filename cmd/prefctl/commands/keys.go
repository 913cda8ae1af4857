package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored key names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}
