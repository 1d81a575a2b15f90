package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/omegakit/omega/internal/profile"
)

var profileFormat string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the install-profile metadata",
	Long: `Show the content types and roles shipped with the install profile.
These are declarative descriptors only; Omega never acts on them.`,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVarP(&profileFormat, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	nodeTypes, err := profile.NodeTypes()
	if err != nil {
		return fmt.Errorf("reading profile metadata: %w", err)
	}
	roles, err := profile.Roles()
	if err != nil {
		return fmt.Errorf("reading profile metadata: %w", err)
	}

	data := map[string]any{"node_types": nodeTypes, "roles": roles}
	if done, err := renderStructured(cmd, profileFormat, data); done {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tBASE")
	for _, nt := range nodeTypes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", nt.Type, nt.Name, nt.Base)
	}
	fmt.Fprintln(w, "\nROLE\tWEIGHT")
	for _, role := range roles {
		fmt.Fprintf(w, "%s\t%d\n", role.Name, role.Weight)
	}
	return w.Flush()
}
