package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List installed themes",
	Long: `List the themes registered from the configured theme roots with
their base theme and enabled state.

Examples:
  omega list                      # Table output
  omega list -f json              # JSON output
  omega list --format yaml        # YAML output`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	themes := app.Themes.All()
	if done, err := renderStructured(cmd, listFormat, themes); done {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MACHINE\tNAME\tBASE\tENABLED\tPATH")
	for _, machine := range sortedKeys(themes) {
		theme := themes[machine]
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			theme.Machine, theme.Name, theme.Base, theme.Enabled, theme.Path)
	}
	return w.Flush()
}
