package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	extensionsFormat  string
	extensionsRefresh bool
)

var extensionsCmd = &cobra.Command{
	Use:     "extensions [theme]",
	Aliases: []string{"ext"},
	Short:   "List the extensions visible to a theme",
	Long: `List the extensions discovered across a theme's trail with their
enablement state. Extensions with dependency errors never activate.

Examples:
  omega extensions                # Extensions of the active theme
  omega extensions alpha          # Extensions of theme "alpha"
  omega extensions --refresh      # Bypass caches and rescan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtensions,
}

func init() {
	extensionsCmd.Flags().StringVarP(&extensionsFormat, "format", "f", "table", "output format (table, json, yaml)")
	extensionsCmd.Flags().BoolVar(&extensionsRefresh, "refresh", false, "bypass caches and rescan theme directories")
	rootCmd.AddCommand(extensionsCmd)
}

func runExtensions(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	theme, err := app.resolveTheme(args)
	if err != nil {
		return err
	}

	ctx := app.requestContext(theme)
	all := app.Extensions.All(ctx, extensionsRefresh)
	if done, err := renderStructured(cmd, extensionsFormat, all); done {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTHEME\tENABLED\tERRORS")
	for _, name := range sortedKeys(all) {
		ext := all[name]
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\n",
			ext.Name, ext.Theme, app.Extensions.Enabled(ctx, ext.Name), ext.Errors)
	}
	return w.Flush()
}
