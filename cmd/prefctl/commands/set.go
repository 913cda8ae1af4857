package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prefstore/prefstore/value"
)

// set <key> <value>: parse the value per --type and commit it.
func setCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a typed value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseTyped(typ, args[1])
			if err != nil {
				return err
			}
			if err := store.PutValue(args[0], v); err != nil {
				return err
			}
			fmt.Printf("%s = %s (%s)\n", args[0], v, v.Kind())
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: int64|string|bool|float32|float64")
	return cmd
}

func parseTyped(typ, raw string) (value.Value, error) {
	switch typ {
	case "int", "int64":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("parse %q as int64: %w", raw, err)
		}
		return value.Int64Of(n), nil
	case "string":
		return value.StringOf(raw), nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return value.Value{}, fmt.Errorf("parse %q as bool: %w", raw, err)
		}
		return value.BoolOf(b), nil
	case "float32":
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return value.Value{}, fmt.Errorf("parse %q as float32: %w", raw, err)
		}
		return value.Float32Of(float32(f)), nil
	case "float64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("parse %q as float64: %w", raw, err)
		}
		return value.Float64Of(f), nil
	default:
		return value.Value{}, fmt.Errorf("unknown type %q", typ)
	}
}
