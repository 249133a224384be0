package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/propspec/pkg/scanner"
	"github.com/gnana997/propspec/pkg/watcher"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	var (
		exclude    []string
		debounceMs int
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Print the props of components as they change",
		Long: `Watch dir (default: current directory) and print one JSON line with the new
props of every .svelte file that is written, and a "removed" line for every
file that is deleted. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			env, err := global.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := env.options(exclude)
			if err != nil {
				return err
			}

			ext, err := env.newExtractor()
			if err != nil {
				return err
			}
			defer ext.Close()

			var mu sync.Mutex
			enc := json.NewEncoder(cmd.OutOrStdout())
			onChange := func(ev watcher.Event) {
				mu.Lock()
				defer mu.Unlock()
				if err := enc.Encode(ev); err != nil {
					env.logger.Error("failed to write event", "path", ev.Path, "error", err)
				}
			}

			w, err := watcher.New(ext, watcher.WatchOptions{
				DebounceMs: debounceMs,
				Exclude:    append(scanner.DefaultExcludes(), env.config.Exclude...),
				Props:      opts,
			}, onChange, env.logger)
			if err != nil {
				return err
			}
			if err := w.Start(root); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", root)

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "categories to leave out: VARIABLES, UNIONS, FUNCTIONS")
	cmd.Flags().IntVar(&debounceMs, "debounce", 200, "milliseconds to wait for writes to settle")
	return cmd
}
