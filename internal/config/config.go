// Package config provides configuration management for Omega using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the OMEGA_ prefix. It manages theme root paths, the
// active theme, cache location, global setting defaults, the
// installed-module table used for dependency checks, and watcher
// behavior.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Themes     ThemesConfig      `yaml:"themes"`
	Cache      CacheConfig       `yaml:"cache"`
	Settings   SettingsConfig    `yaml:"settings"`
	Extensions ExtensionsConfig  `yaml:"extensions"`
	Modules    map[string]string `yaml:"modules"`
	Watch      WatchConfig       `yaml:"watch"`
}

type ThemesConfig struct {
	// Roots are the directories scanned for installed themes
	Roots []string `yaml:"roots"`
	// Active is the machine name of the active theme
	Active string `yaml:"active"`
	// SiteRoot anchors the library fallback search tiers
	SiteRoot string `yaml:"site_root"`
	// Profile is the install profile name, empty to skip its tier
	Profile string `yaml:"profile"`
	// Site is the per-site directory name
	Site string `yaml:"site"`
}

type CacheConfig struct {
	// Dir is the persistent cache directory; empty disables persistence
	Dir string `yaml:"dir"`
	// MaxSize bounds the in-process cache in bytes
	MaxSize int64 `yaml:"max_size"`
}

type SettingsConfig struct {
	// Defaults is the global tier of setting resolution
	Defaults map[string]any `yaml:"defaults"`
	// File stores saved per-theme settings
	File string `yaml:"file"`
}

type ExtensionsConfig struct {
	// Disabled force-disables every extension at runtime
	Disabled bool `yaml:"disabled"`
}

type WatchConfig struct {
	// Debounce groups rapid filesystem changes into one invalidation
	Debounce time.Duration `yaml:"debounce"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle theme roots set via viper (workaround for viper slice handling)
	if viper.IsSet("themes.roots") && len(config.Themes.Roots) == 0 {
		if roots := viper.GetStringSlice("themes.roots"); len(roots) > 0 {
			config.Themes.Roots = roots
		}
	}
	if len(config.Themes.Roots) == 0 {
		config.Themes.Roots = []string{"./themes"}
	}

	// Unmarshal matches struct field names, not the yaml keys, so pull
	// the remaining values through viper directly.
	if viper.IsSet("themes.active") {
		config.Themes.Active = viper.GetString("themes.active")
	}
	if viper.IsSet("themes.site_root") {
		config.Themes.SiteRoot = viper.GetString("themes.site_root")
	}
	if viper.IsSet("themes.profile") {
		config.Themes.Profile = viper.GetString("themes.profile")
	}
	if viper.IsSet("themes.site") {
		config.Themes.Site = viper.GetString("themes.site")
	}
	if config.Themes.SiteRoot == "" {
		config.Themes.SiteRoot = "."
	}
	if config.Themes.Site == "" {
		config.Themes.Site = "default"
	}

	if viper.IsSet("cache.dir") {
		config.Cache.Dir = viper.GetString("cache.dir")
	} else if config.Cache.Dir == "" {
		config.Cache.Dir = ".omega/cache"
	}
	if viper.IsSet("cache.max_size") {
		config.Cache.MaxSize = viper.GetInt64("cache.max_size")
	}

	if viper.IsSet("settings.file") {
		config.Settings.File = viper.GetString("settings.file")
	}
	if config.Settings.File == "" {
		config.Settings.File = ".omega/settings.yml"
	}
	if config.Settings.Defaults == nil {
		config.Settings.Defaults = make(map[string]any)
	}
	// Handle defaults set via viper (Unmarshal misses dynamic keys)
	if viper.IsSet("settings.defaults") {
		for k, v := range viper.GetStringMap("settings.defaults") {
			if _, exists := config.Settings.Defaults[k]; !exists {
				config.Settings.Defaults[k] = v
			}
		}
	}

	if config.Modules == nil {
		config.Modules = make(map[string]string)
	}
	if viper.IsSet("modules") {
		for k, v := range viper.GetStringMapString("modules") {
			if _, exists := config.Modules[k]; !exists {
				config.Modules[k] = v
			}
		}
	}

	if viper.IsSet("extensions.disabled") {
		config.Extensions.Disabled = viper.GetBool("extensions.disabled")
	}

	if viper.IsSet("watch.debounce") {
		config.Watch.Debounce = viper.GetDuration("watch.debounce")
	}
	if config.Watch.Debounce <= 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for correctness and
// rejects path traversal in the writable locations.
func validateConfig(config *Config) error {
	for _, root := range config.Themes.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("themes config: empty theme root")
		}
	}

	if strings.Contains(config.Cache.Dir, "..") {
		return fmt.Errorf("cache config: directory must not contain path traversal")
	}
	if strings.Contains(config.Settings.File, "..") {
		return fmt.Errorf("settings config: file must not contain path traversal")
	}

	if config.Cache.MaxSize < 0 {
		return fmt.Errorf("cache config: max_size must not be negative")
	}
	return nil
}
