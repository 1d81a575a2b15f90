package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Read and write theme settings",
	Long: `Read a setting resolved across the trail (saved settings beat the
sub-theme's declared defaults, which beat its base themes', which beat
the global defaults), or save a per-theme override.`,
}

var settingGetCmd = &cobra.Command{
	Use:   "get <theme> <name>",
	Short: "Resolve one setting for a theme",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingGet,
}

var settingSetCmd = &cobra.Command{
	Use:   "set <theme> <name> <value>",
	Short: "Save a per-theme setting override",
	Long: `Save a setting override for one theme. The value is parsed as YAML,
so booleans and numbers keep their type ("true", "42") and everything
else is stored as a string.`,
	Args: cobra.ExactArgs(3),
	RunE: runSettingSet,
}

func init() {
	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)
	rootCmd.AddCommand(settingCmd)
}

func runSettingGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	theme, err := app.resolveTheme(args[:1])
	if err != nil {
		return err
	}

	value := app.Settings.Get(app.requestContext(theme), args[1], nil)
	if value == nil {
		return fmt.Errorf("setting %q is not set for theme %q", args[1], theme)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
	return nil
}

func runSettingSet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	theme, err := app.resolveTheme(args[:1])
	if err != nil {
		return err
	}

	var value any
	if err := yaml.Unmarshal([]byte(args[2]), &value); err != nil {
		value = args[2]
	}
	if err := app.Settings.Set(theme, args[1], value); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s = %v for theme %s\n", args[1], value, theme)
	return nil
}
