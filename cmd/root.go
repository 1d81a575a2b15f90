// Package cmd provides the command-line interface for Omega.
//
// Configuration is loaded from multiple sources with clear precedence:
//
//  1. Command-line flags (--config, --log-level) - highest priority
//  2. OMEGA_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (OMEGA_THEMES_ACTIVE, etc.)
//  4. Configuration files (.omega.yml) - lowest priority
//
// Environment variables follow the OMEGA_<SECTION>_<OPTION> pattern,
// e.g. OMEGA_THEMES_ACTIVE, OMEGA_CACHE_DIR, OMEGA_EXTENSIONS_DISABLED.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "omega",
	Short: "Theme trail, setting, and extension resolution for layered themes",
	Long: `Omega resolves layered theme hierarchies: it builds base-theme trails,
merges settings across the trail, and discovers extensions, layouts, and
libraries declared by the themes on disk.

Quick Start:
  omega list                      List installed themes
  omega trail <theme>             Show a theme's base-theme trail
  omega extensions <theme>        Show the extensions visible to a theme
  omega layouts <theme>           Show discovered layouts
  omega libraries <theme>         Show resolved libraries
  omega setting get <theme> <k>   Resolve one setting across the trail`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// normalizeFlag lets flags be spelled with underscores the way the
// config keys are (--log_level is --log-level).
func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlag)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .omega.yml, can also use OMEGA_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Loading priority (highest to lowest): the --config flag, the
// OMEGA_CONFIG_FILE environment variable, then .omega.yml in the
// current directory. Environment variables with the OMEGA_ prefix
// override file values.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("OMEGA_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".omega")
	}

	viper.SetEnvPrefix("OMEGA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file is not fatal; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
