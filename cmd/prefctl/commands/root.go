package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/prefstore/prefstore/observability"
	"github.com/prefstore/prefstore/prefs"
)

var (
	dir       string
	storeName string
	timeout   time.Duration
	verbose   bool

	store *prefs.Store
)

func Execute() error {
	root := &cobra.Command{
		Use:          "prefctl",
		Short:        "Inspect and edit a durable preference store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				dir = filepath.Join(home, ".prefstore")
			}

			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("store") && cfg.Store != "" {
				storeName = cfg.Store
			}
			if !cmd.Flags().Changed("timeout") {
				if timeout, err = cfg.timeoutValue(); err != nil {
					return err
				}
			}
			if cfg.Verbose {
				verbose = true
			}

			opts := []prefs.Option{prefs.WithTimeout(timeout)}
			if verbose {
				logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				opts = append(opts, prefs.WithObserver(observability.NewSlogObserver(logger)))
			}

			store, err = prefs.Open(dir, storeName, opts...)
			return err
		},
	}

	root.PersistentFlags().StringVar(&dir, "dir", "", "store directory (default ~/.prefstore)")
	root.PersistentFlags().StringVar(&storeName, "store", "default", "store name")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-operation timeout, 0 waits indefinitely")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log store events to stderr")

	root.AddCommand(setCmd(), getCmd(), keysCmd(), clearCmd(), watchCmd())
	return root.Execute()
}
