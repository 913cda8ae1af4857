package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// get <type> <key> [default]: read one slot. A string read without a default
// fails on a missing key; every other type requires the default argument.
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <key> [default]",
		Short: "Read a value, falling back to an optional default",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, key := args[0], args[1]

			if typ == "string" {
				var v string
				var err error
				if len(args) == 3 {
					v, err = store.GetString(key, args[2])
				} else {
					v, err = store.GetString(key)
				}
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			}

			if len(args) < 3 {
				return fmt.Errorf("type %s requires a default argument", typ)
			}
			def, err := parseTyped(typ, args[2])
			if err != nil {
				return err
			}
			v, err := store.Get(key, def.Any())
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}
