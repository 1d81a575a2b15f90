// Package settings resolves named theme settings through four layered
// tiers, later tiers overriding earlier ones:
//
//  1. global defaults (settings.defaults in the site configuration)
//  2. base-theme info-file defaults, in trail order
//  3. sub-theme info-file defaults
//  4. saved per-theme settings
//
// A key absent from every tier resolves to the caller-supplied
// fallback. The merged view is cached per theme for the lifetime of the
// resolver.
package settings

import (
	"strings"
	"sync"

	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/types"
)

// Resolver implements layered setting resolution.
type Resolver struct {
	registry *registry.ThemeRegistry
	defaults map[string]any
	store    *Store // nil when no saved-settings store is configured

	mutex  sync.Mutex
	merged map[string]map[string]any
}

// NewResolver creates a resolver over the installed themes. defaults is
// the global tier; store supplies saved per-theme values and may be nil.
func NewResolver(reg *registry.ThemeRegistry, defaults map[string]any, store *Store) *Resolver {
	return &Resolver{
		registry: reg,
		defaults: defaults,
		store:    store,
		merged:   make(map[string]map[string]any),
	}
}

// Get resolves name for the context's active theme.
func (r *Resolver) Get(ctx types.RequestContext, name string, fallback any) any {
	return r.GetForTheme(ctx, ctx.Theme, name, fallback)
}

// GetForTheme resolves name for an explicit theme. The context's
// precomputed trail is honored when it belongs to the queried theme.
func (r *Resolver) GetForTheme(ctx types.RequestContext, theme, name string, fallback any) any {
	if value, ok := r.mergedFor(ctx, theme)[name]; ok {
		return value
	}
	return fallback
}

// GetBool resolves name and interprets the value as a boolean.
func (r *Resolver) GetBool(ctx types.RequestContext, name string, fallback bool) bool {
	return AsBool(r.Get(ctx, name, fallback))
}

// GetString resolves name and returns it as a string, or fallback when
// the value is absent or not a string.
func (r *Resolver) GetString(ctx types.RequestContext, name, fallback string) string {
	if s, ok := r.Get(ctx, name, fallback).(string); ok {
		return s
	}
	return fallback
}

// Set stores a saved per-theme setting and invalidates the theme's
// merged view. It fails only when the store cannot persist.
func (r *Resolver) Set(theme, name string, value any) error {
	if r.store != nil {
		if err := r.store.Set(theme, name, value); err != nil {
			return err
		}
	}

	r.mutex.Lock()
	delete(r.merged, theme)
	r.mutex.Unlock()
	return nil
}

// Invalidate drops every cached merged view.
func (r *Resolver) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.merged = make(map[string]map[string]any)
}

// mergedFor returns the cached merged settings map for theme, building
// it on first use.
func (r *Resolver) mergedFor(ctx types.RequestContext, theme string) map[string]any {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if m, ok := r.merged[theme]; ok {
		return m
	}

	m := make(map[string]any, len(r.defaults))
	for k, v := range r.defaults {
		m[k] = v
	}

	trail := ctx.Trail
	if trail == nil || ctx.Theme != theme {
		trail = r.registry.Trail(theme)
	}
	for _, entry := range trail {
		if info, ok := r.registry.Get(entry.Machine); ok {
			for k, v := range info.Settings {
				m[k] = v
			}
		}
	}

	if r.store != nil {
		for k, v := range r.store.Theme(theme) {
			m[k] = v
		}
	}

	r.merged[theme] = m
	return m
}

// AsBool interprets a resolved setting value as a boolean the way the
// hosting platform does: true booleans, non-zero numbers, and the
// strings "1", "true", "yes", "on".
func AsBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case int:
		return value != 0
	case float64:
		return value != 0
	case string:
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}
