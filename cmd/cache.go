package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the resolution caches",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the process and persistent caches",
	Long: `Drop every cached registry snapshot. The next lookup rebuilds from
the theme directories on disk.`,
	RunE: runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show process cache statistics",
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	if err := app.invalidate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	mem := app.Cache.Memory()
	fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\nhits: %d\nmisses: %d\nevictions: %d\n",
		mem.Len(), mem.Hits(), mem.Misses(), mem.Evictions())
	return nil
}
