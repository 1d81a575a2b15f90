package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trailFormat string

var trailCmd = &cobra.Command{
	Use:   "trail [theme]",
	Short: "Show a theme's base-theme trail",
	Long: `Show the ordered ancestor chain for a theme: the deepest base theme
first, the queried theme always last. Without an argument the
configured active theme is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrail,
}

func init() {
	trailCmd.Flags().StringVarP(&trailFormat, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(trailCmd)
}

func runTrail(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	theme, err := app.resolveTheme(args)
	if err != nil {
		return err
	}

	trail := app.Themes.Trail(theme)
	if done, err := renderStructured(cmd, trailFormat, trail); done {
		return err
	}

	for i, entry := range trail {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s)\n", i+1, entry.Machine, entry.Name)
	}
	return nil
}
