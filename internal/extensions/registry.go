package extensions

import (
	"context"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/discovery"
	"github.com/omegakit/omega/internal/hooks"
	"github.com/omegakit/omega/internal/infofile"
	"github.com/omegakit/omega/internal/logging"
	"github.com/omegakit/omega/internal/settings"
	"github.com/omegakit/omega/internal/types"
)

// cacheNamespace prefixes every persisted extension cache key.
const cacheNamespace = "omega"

// Registry resolves the extensions visible to a theme. Lookups go
// process map → persistent cache → discovery; discovered descriptors
// pass through the alteration chain, then enablement and dependency
// checks, before being persisted.
type Registry struct {
	discoverer *discovery.Discoverer
	settings   *settings.Resolver
	cache      *cache.Cache
	alter      *hooks.AlterChain[types.ExtensionInfo]
	modules    map[string]string
	disabled   bool
	logger     logging.Logger

	mutex   sync.Mutex
	process map[string]map[string]*types.ExtensionInfo
}

// NewRegistry creates the extension registry. modules is the
// installed-module version table used for dependency checks; cache may
// be nil to disable persistence.
func NewRegistry(
	discoverer *discovery.Discoverer,
	resolver *settings.Resolver,
	c *cache.Cache,
	modules map[string]string,
	logger logging.Logger,
) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		discoverer: discoverer,
		settings:   resolver,
		cache:      c,
		alter:      hooks.NewAlterChain[types.ExtensionInfo](),
		modules:    modules,
		logger:     logger.WithComponent("extensions"),
		process:    make(map[string]map[string]*types.ExtensionInfo),
	}
}

// Alter exposes the alteration chain so callers can register descriptor
// transforms before the first lookup.
func (r *Registry) Alter() *hooks.AlterChain[types.ExtensionInfo] {
	return r.alter
}

// SetDisabled toggles the global kill switch. While set, Enabled
// reports false for every extension without touching the cached
// descriptors.
func (r *Registry) SetDisabled(disabled bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.disabled = disabled
}

// All returns the extensions visible to the context's theme. With
// refresh, both cache tiers are bypassed and the result overwrites them.
func (r *Registry) All(ctx types.RequestContext, refresh bool) map[string]*types.ExtensionInfo {
	theme := ctx.Theme
	key := cacheNamespace + ":" + theme + ":extension"

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !refresh {
		if result, ok := r.process[theme]; ok {
			return copyExtensions(result)
		}
		if r.cache != nil {
			if data, ok := r.cache.Get(key); ok {
				var result map[string]*types.ExtensionInfo
				if err := yaml.Unmarshal(data, &result); err == nil {
					r.process[theme] = result
					return copyExtensions(result)
				}
			}
		}
	}

	result := r.build(ctx)
	r.process[theme] = result

	if r.cache != nil {
		if data, err := yaml.Marshal(result); err == nil {
			if err := r.cache.Set(key, data); err != nil {
				r.logger.Warn(context.Background(), err, "persisting extension cache", "theme", theme)
			}
		}
	}
	return copyExtensions(result)
}

// copyExtensions returns a copy of the cached map so callers cannot
// mutate the process cache.
func copyExtensions(m map[string]*types.ExtensionInfo) map[string]*types.ExtensionInfo {
	result := make(map[string]*types.ExtensionInfo, len(m))
	for name, ext := range m {
		result[name] = ext
	}
	return result
}

// build runs discovery and derives the enablement and error state of
// every descriptor.
func (r *Registry) build(ctx types.RequestContext) map[string]*types.ExtensionInfo {
	defs := r.discoverer.Discover(discovery.KindExtension, ctx.Theme)

	result := make(map[string]*types.ExtensionInfo, len(defs))
	for name, def := range defs {
		ext := types.ExtensionInfo{
			Name:  name,
			Path:  def.Path,
			Theme: def.Theme,
			Info:  def.Info,
		}

		ext = r.alter.Apply(ext, ctx)

		declared, _ := infofile.Bool(ext.Info, "enabled")
		ext.Enabled = settings.AsBool(
			r.settings.Get(ctx, "toggle_extension_"+name, declared))
		ext.Errors = r.hasDependencyErrors(ext)

		result[name] = &ext
	}
	return result
}

// hasDependencyErrors checks every declared dependency against the
// installed-module table.
func (r *Registry) hasDependencyErrors(ext types.ExtensionInfo) bool {
	for _, decl := range infofile.Strings(ext.Info, "dependencies") {
		dep := ParseDependency(decl)
		installed, ok := r.modules[dep.Name]
		if !ok {
			return true
		}
		if !dep.Compatible(installed) {
			return true
		}
	}
	return false
}

// Enabled reports whether the named extension is active for the
// context's theme: it must exist, carry no dependency errors, be
// enabled by settings, and the registry must not be globally disabled.
func (r *Registry) Enabled(ctx types.RequestContext, name string) bool {
	r.mutex.Lock()
	disabled := r.disabled
	r.mutex.Unlock()
	if disabled {
		return false
	}

	ext, ok := r.All(ctx, false)[name]
	return ok && !ext.Errors && ext.Enabled
}

// Invalidate drops the process-local descriptor maps. Persistent
// entries are left to the shared cache's own clear operations.
func (r *Registry) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.process = make(map[string]map[string]*types.ExtensionInfo)
}
