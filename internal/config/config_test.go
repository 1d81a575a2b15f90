package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWith(t *testing.T, set func()) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	if set != nil {
		set()
	}
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadWith(t, nil)

	assert.Equal(t, []string{"./themes"}, cfg.Themes.Roots)
	assert.Equal(t, ".", cfg.Themes.SiteRoot)
	assert.Equal(t, "default", cfg.Themes.Site)
	assert.Equal(t, ".omega/cache", cfg.Cache.Dir)
	assert.Equal(t, ".omega/settings.yml", cfg.Settings.File)
	assert.NotNil(t, cfg.Settings.Defaults)
	assert.NotNil(t, cfg.Modules)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.Extensions.Disabled)
}

func TestLoad_ViperOverrides(t *testing.T) {
	cfg := loadWith(t, func() {
		viper.Set("themes.roots", []string{"/srv/themes", "/opt/themes"})
		viper.Set("themes.active", "alpha")
		viper.Set("extensions.disabled", true)
		viper.Set("settings.defaults", map[string]any{"toggle_extension_css": true})
		viper.Set("modules", map[string]string{"views": "7.x-3.20"})
	})

	assert.Equal(t, []string{"/srv/themes", "/opt/themes"}, cfg.Themes.Roots)
	assert.Equal(t, "alpha", cfg.Themes.Active)
	assert.True(t, cfg.Extensions.Disabled)
	assert.Equal(t, true, cfg.Settings.Defaults["toggle_extension_css"])
	assert.Equal(t, "7.x-3.20", cfg.Modules["views"])
}

func TestLoad_ExplicitEmptyCacheDirDisablesPersistence(t *testing.T) {
	cfg := loadWith(t, func() {
		viper.Set("cache.dir", "")
	})
	assert.Empty(t, cfg.Cache.Dir)
}

func TestLoad_RejectsPathTraversal(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("cache.dir", "../outside")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestLoad_RejectsEmptyThemeRoot(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("themes.roots", []string{"  "})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty theme root")
}

func TestLoad_NegativeDebounceFallsBack(t *testing.T) {
	cfg := loadWith(t, func() {
		viper.Set("watch.debounce", "-5ms")
	})
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}
