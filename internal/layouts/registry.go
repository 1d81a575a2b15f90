// Package layouts maintains the layout registry: trail-independent
// discovery of page layouts across every installed theme, resolution of
// their attached stylesheet and script assets, and lookup of the active
// layout for a request.
package layouts

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/discovery"
	"github.com/omegakit/omega/internal/extensions"
	"github.com/omegakit/omega/internal/hooks"
	"github.com/omegakit/omega/internal/infofile"
	"github.com/omegakit/omega/internal/logging"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/settings"
	"github.com/omegakit/omega/internal/types"
)

// cacheKey is the persisted layout cache entry; layout discovery is
// trail-independent so one entry covers every theme.
const cacheKey = "omega:layouts"

// Registry resolves the installed layouts and the active layout for a
// request.
type Registry struct {
	themes     *registry.ThemeRegistry
	discoverer *discovery.Discoverer
	settings   *settings.Resolver
	extensions *extensions.Registry
	cache      *cache.Cache
	alter      *hooks.AlterChain[types.LayoutInfo]
	override   *hooks.AlterChain[string]
	logger     logging.Logger

	mutex   sync.Mutex
	process map[string]*types.LayoutInfo
}

// NewRegistry creates the layout registry. ext gates Active on the
// "layouts" extension; cache may be nil to disable persistence.
func NewRegistry(
	themes *registry.ThemeRegistry,
	discoverer *discovery.Discoverer,
	resolver *settings.Resolver,
	ext *extensions.Registry,
	c *cache.Cache,
	logger logging.Logger,
) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		themes:     themes,
		discoverer: discoverer,
		settings:   resolver,
		extensions: ext,
		cache:      c,
		alter:      hooks.NewAlterChain[types.LayoutInfo](),
		override:   hooks.NewAlterChain[string](),
		logger:     logger.WithComponent("layouts"),
	}
}

// Alter exposes the descriptor alteration chain.
func (r *Registry) Alter() *hooks.AlterChain[types.LayoutInfo] {
	return r.alter
}

// Override exposes the active-layout-name override chain, applied after
// the layout setting is read.
func (r *Registry) Override() *hooks.AlterChain[string] {
	return r.override
}

// All returns every installed layout keyed by name. With refresh, both
// cache tiers are bypassed and the result overwrites them.
func (r *Registry) All(refresh bool) map[string]*types.LayoutInfo {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !refresh {
		if r.process != nil {
			return copyLayouts(r.process)
		}
		if r.cache != nil {
			if data, ok := r.cache.Get(cacheKey); ok {
				var result map[string]*types.LayoutInfo
				if err := yaml.Unmarshal(data, &result); err == nil {
					r.process = result
					return copyLayouts(result)
				}
			}
		}
	}

	result := r.build()
	r.process = result

	if r.cache != nil {
		if data, err := yaml.Marshal(result); err == nil {
			if err := r.cache.Set(cacheKey, data); err != nil {
				r.logger.Warn(context.Background(), err, "persisting layout cache")
			}
		}
	}
	return copyLayouts(result)
}

// copyLayouts returns a copy of the cached map so callers cannot mutate
// the process cache.
func copyLayouts(m map[string]*types.LayoutInfo) map[string]*types.LayoutInfo {
	result := make(map[string]*types.LayoutInfo, len(m))
	for name, layout := range m {
		result[name] = layout
	}
	return result
}

// build discovers layouts and resolves their attached assets.
func (r *Registry) build() map[string]*types.LayoutInfo {
	defs := r.discoverer.Discover(discovery.KindLayout, "")
	ctx := types.RequestContext{}

	result := make(map[string]*types.LayoutInfo, len(defs))
	for name, def := range defs {
		layout := types.LayoutInfo{
			Name:     name,
			Template: name,
			Theme:    def.Theme,
			Path:     def.Path,
			Info:     def.Info,
		}
		if template, ok := infofile.String(def.Info, "template"); ok && template != "" {
			layout.Template = template
		}

		layout.Stylesheets = r.resolveStylesheets(def)
		layout.Scripts = r.resolveScripts(def)

		layout = r.alter.Apply(layout, ctx)
		result[name] = &layout
	}
	return result
}

// resolveStylesheets resolves the stylesheets[media][] declarations.
// Media groups are walked in sorted order so results are deterministic.
func (r *Registry) resolveStylesheets(def *types.Definition) []types.StyleAsset {
	declared := infofile.Map(def.Info, "stylesheets")
	if len(declared) == 0 {
		return nil
	}

	medias := make([]string, 0, len(declared))
	for media := range declared {
		medias = append(medias, media)
	}
	sort.Strings(medias)

	var assets []types.StyleAsset
	for _, media := range medias {
		for _, rel := range infofile.Strings(declared, media) {
			resolved, ok := r.locateAsset(def, rel)
			if !ok {
				continue
			}
			assets = append(assets, types.StyleAsset{
				Path:   resolved,
				Media:  media,
				Weight: types.AssetWeight,
			})
		}
	}
	return assets
}

// resolveScripts resolves the scripts[] declarations.
func (r *Registry) resolveScripts(def *types.Definition) []types.ScriptAsset {
	var assets []types.ScriptAsset
	for _, rel := range infofile.Strings(def.Info, "scripts") {
		resolved, ok := r.locateAsset(def, rel)
		if !ok {
			continue
		}
		assets = append(assets, types.ScriptAsset{
			Path:   resolved,
			Weight: types.AssetWeight,
		})
	}
	return assets
}

// locateAsset looks for a declared asset first beside the layout's
// definition file, then under the owning theme's root. Assets found in
// neither place are omitted.
func (r *Registry) locateAsset(def *types.Definition, rel string) (string, bool) {
	candidate := filepath.Join(filepath.Dir(def.Path), rel)
	if fileExists(candidate) {
		return candidate, true
	}

	if theme, ok := r.themes.Get(def.Theme); ok {
		candidate = filepath.Join(theme.Path, rel)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Active resolves the layout for the request, or nil when the layouts
// extension is disabled, no layout name resolves, or the name matches
// no installed layout. Absence is a normal outcome, never an error.
func (r *Registry) Active(ctx types.RequestContext) *types.LayoutInfo {
	if r.extensions == nil || !r.extensions.Enabled(ctx, "layouts") {
		return nil
	}

	name := r.settings.GetString(ctx, "layout", "")
	name = r.override.Apply(name, ctx)
	if name == "" {
		return nil
	}

	return r.All(false)[name]
}

// Invalidate drops the process-local layout map.
func (r *Registry) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.process = nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
