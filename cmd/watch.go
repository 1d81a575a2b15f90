package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omegakit/omega/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch theme roots and invalidate caches on change",
	Long: `Watch the configured theme roots for filesystem changes. Any change
drops the cached registry snapshots and reloads the theme registry, so
the next lookup reflects the directories on disk. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	tw, err := watcher.New(app.Config.Watch.Debounce, app.Logger)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer tw.Stop()

	tw.AddHandler(func(paths []string) {
		app.Logger.Info(cmd.Context(), "theme change detected", "paths", len(paths))
		if err := app.invalidate(); err != nil {
			app.Logger.Warn(cmd.Context(), err, "invalidating caches")
		}
		app.Themes.Reset()
		if err := app.Themes.LoadFromRoots(app.Config.Themes.Roots); err != nil {
			app.Logger.Warn(cmd.Context(), err, "reloading themes")
		}
	})

	for _, root := range app.Config.Themes.Roots {
		if err := tw.AddRoot(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tw.Start(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), "Watching theme roots, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}
