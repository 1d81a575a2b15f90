package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	layoutsFormat  string
	layoutsRefresh bool
	layoutsActive  bool
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts [theme]",
	Short: "List discovered layouts",
	Long: `List the layouts discovered across every installed theme. Layouts are
not trail-scoped: a theme may use a layout any installed theme provides.

With --active, resolve and print only the layout active for the theme,
which requires the "layouts" extension to be enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayouts,
}

func init() {
	layoutsCmd.Flags().StringVarP(&layoutsFormat, "format", "f", "table", "output format (table, json, yaml)")
	layoutsCmd.Flags().BoolVar(&layoutsRefresh, "refresh", false, "bypass caches and rescan theme directories")
	layoutsCmd.Flags().BoolVar(&layoutsActive, "active", false, "show only the active layout for the theme")
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	if layoutsActive {
		theme, err := app.resolveTheme(args)
		if err != nil {
			return err
		}
		active := app.Layouts.Active(app.requestContext(theme))
		if active == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no active layout")
			return nil
		}
		if done, err := renderStructured(cmd, layoutsFormat, active); done {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (template %s, theme %s)\n",
			active.Name, active.Template, active.Theme)
		return nil
	}

	all := app.Layouts.All(layoutsRefresh)
	if done, err := renderStructured(cmd, layoutsFormat, all); done {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTEMPLATE\tTHEME\tSTYLESHEETS\tSCRIPTS")
	for _, name := range sortedKeys(all) {
		layout := all[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			layout.Name, layout.Template, layout.Theme,
			len(layout.Stylesheets), len(layout.Scripts))
	}
	return w.Flush()
}
