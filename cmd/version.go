package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omegakit/omega/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "omega %s (%s)\n",
			version.GetShortVersion(), version.Platform())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
