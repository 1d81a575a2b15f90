package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/config"
	"github.com/omegakit/omega/internal/discovery"
	"github.com/omegakit/omega/internal/extensions"
	"github.com/omegakit/omega/internal/hooks"
	"github.com/omegakit/omega/internal/layouts"
	"github.com/omegakit/omega/internal/libraries"
	"github.com/omegakit/omega/internal/logging"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/settings"
	"github.com/omegakit/omega/internal/types"
)

// App wires the full resolution stack for one invocation: configuration,
// theme registry, setting resolver, and the discovery-backed registries.
type App struct {
	Config     *config.Config
	Logger     logging.Logger
	Cache      *cache.Cache
	Themes     *registry.ThemeRegistry
	Settings   *settings.Resolver
	Discoverer *discovery.Discoverer
	Hooks      *hooks.Registry
	Extensions *extensions.Registry
	Layouts    *layouts.Registry
	Libraries  *libraries.Registry
}

// newApp loads configuration, registers the themes found under the
// configured roots, and constructs the registries on a shared cache.
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: rootCmd.ErrOrStderr(),
	})

	var store *cache.FileStore
	if cfg.Cache.Dir != "" {
		store, err = cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening cache directory: %w", err)
		}
	}
	c := cache.New(cache.NewMemoryCache(cfg.Cache.MaxSize), store)

	themes := registry.NewThemeRegistry()
	if err := themes.LoadFromRoots(cfg.Themes.Roots); err != nil {
		return nil, fmt.Errorf("loading themes: %w", err)
	}

	resolver := settings.NewResolver(themes, cfg.Settings.Defaults, settings.NewStore(cfg.Settings.File))
	discoverer := discovery.NewDiscoverer(themes, c, logger)
	hookRegistry := hooks.NewRegistry()

	ext := extensions.NewRegistry(discoverer, resolver, c, cfg.Modules, logger)
	ext.SetDisabled(cfg.Extensions.Disabled)

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Cache:      c,
		Themes:     themes,
		Settings:   resolver,
		Discoverer: discoverer,
		Hooks:      hookRegistry,
		Extensions: ext,
		Layouts:    layouts.NewRegistry(themes, discoverer, resolver, ext, c, logger),
		Libraries: libraries.NewRegistry(themes, hookRegistry, c, libraries.Paths{
			SiteRoot: cfg.Themes.SiteRoot,
			Profile:  cfg.Themes.Profile,
			Site:     cfg.Themes.Site,
		}, logger),
	}
	return app, nil
}

// resolveTheme picks the theme for a command: the positional argument
// when given, otherwise the configured active theme.
func (a *App) resolveTheme(args []string) (string, error) {
	name := a.Config.Themes.Active
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return "", fmt.Errorf("no theme given and themes.active is not configured")
	}
	if _, ok := a.Themes.Get(name); !ok {
		return "", fmt.Errorf("unknown theme %q", name)
	}
	return name, nil
}

// requestContext builds the per-invocation context for theme.
func (a *App) requestContext(theme string) types.RequestContext {
	return types.RequestContext{Theme: theme, Trail: a.Themes.Trail(theme)}
}

// invalidate drops every cached view, the persistent cache included, so
// the next lookup rebuilds from the theme directories on disk.
func (a *App) invalidate() error {
	if err := a.Cache.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	a.Discoverer.Reset()
	a.Extensions.Invalidate()
	a.Layouts.Invalidate()
	a.Libraries.Invalidate()
	a.Settings.Invalidate()
	return nil
}
