package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	librariesFormat  string
	librariesRefresh bool
)

var librariesCmd = &cobra.Command{
	Use:     "libraries [theme]",
	Aliases: []string{"lib"},
	Short:   "List the libraries resolved for a theme",
	Long: `List the asset libraries contributed by the theme trail's hooks,
with the directory each one resolved to. Libraries without any
candidate directory are listed with an empty path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLibraries,
}

func init() {
	librariesCmd.Flags().StringVarP(&librariesFormat, "format", "f", "table", "output format (table, json, yaml)")
	librariesCmd.Flags().BoolVar(&librariesRefresh, "refresh", false, "bypass caches and re-invoke the hooks")
	rootCmd.AddCommand(librariesCmd)
}

func runLibraries(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	theme, err := app.resolveTheme(args)
	if err != nil {
		return err
	}

	all := app.Libraries.All(app.requestContext(theme), librariesRefresh)
	if done, err := renderStructured(cmd, librariesFormat, all); done {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTHEME\tPATH")
	for _, name := range sortedKeys(all) {
		lib := all[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", lib.Name, lib.Theme, lib.Path)
	}
	return w.Flush()
}
