// Package libraries maintains the library registry: asset libraries
// contributed by theme hook implementations across the trail, merged
// recursively and resolved to on-disk directories through a fixed
// search order.
package libraries

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/hooks"
	"github.com/omegakit/omega/internal/logging"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/types"
)

// HookName is the hook invoked across the trail to collect library
// definitions. Each implementation returns a map of library name to
// definition data.
const HookName = "libraries"

// cacheNamespace prefixes every persisted library cache key.
const cacheNamespace = "omega"

// Paths configures the fixed fallback search locations, all relative to
// the site root.
type Paths struct {
	// SiteRoot is the hosting site's root directory
	SiteRoot string
	// Profile is the install profile name, empty to skip its tier
	Profile string
	// Site is the per-site directory name (e.g. "default"), empty to skip
	Site string
}

// Locator is an externally registered library finder, consulted after
// the trail directories and before the fixed fallback order. It stands
// in for the platform's optional library-management facility.
type Locator func(name string) (path string, ok bool)

// Registry resolves the libraries visible to a theme.
type Registry struct {
	themes   *registry.ThemeRegistry
	hooks    *hooks.Registry
	cache    *cache.Cache
	alter    *hooks.AlterChain[types.LibraryInfo]
	paths    Paths
	locators []Locator
	logger   logging.Logger

	mutex   sync.Mutex
	process map[string]map[string]*types.LibraryInfo
}

// NewRegistry creates the library registry. cache may be nil to disable
// persistence.
func NewRegistry(
	themes *registry.ThemeRegistry,
	hookRegistry *hooks.Registry,
	c *cache.Cache,
	paths Paths,
	logger logging.Logger,
) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		themes:  themes,
		hooks:   hookRegistry,
		cache:   c,
		alter:   hooks.NewAlterChain[types.LibraryInfo](),
		paths:   paths,
		logger:  logger.WithComponent("libraries"),
		process: make(map[string]map[string]*types.LibraryInfo),
	}
}

// Alter exposes the descriptor alteration chain.
func (r *Registry) Alter() *hooks.AlterChain[types.LibraryInfo] {
	return r.alter
}

// AddLocator registers an external library finder.
func (r *Registry) AddLocator(fn Locator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.locators = append(r.locators, fn)
}

// All returns the libraries visible to the context's theme, keyed by
// library name. With refresh, both cache tiers are bypassed and the
// result overwrites them.
func (r *Registry) All(ctx types.RequestContext, refresh bool) map[string]*types.LibraryInfo {
	theme := ctx.Theme
	key := cacheNamespace + ":" + theme + ":library"

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !refresh {
		if result, ok := r.process[theme]; ok {
			return copyLibraries(result)
		}
		if r.cache != nil {
			if data, ok := r.cache.Get(key); ok {
				var result map[string]*types.LibraryInfo
				if err := yaml.Unmarshal(data, &result); err == nil {
					r.process[theme] = result
					return copyLibraries(result)
				}
			}
		}
	}

	result := r.build(ctx)
	r.process[theme] = result

	if r.cache != nil {
		if data, err := yaml.Marshal(result); err == nil {
			if err := r.cache.Set(key, data); err != nil {
				r.logger.Warn(context.Background(), err, "persisting library cache", "theme", theme)
			}
		}
	}
	return copyLibraries(result)
}

// copyLibraries returns a copy of the cached map so callers cannot
// mutate the process cache.
func copyLibraries(m map[string]*types.LibraryInfo) map[string]*types.LibraryInfo {
	result := make(map[string]*types.LibraryInfo, len(m))
	for name, lib := range m {
		result[name] = lib
	}
	return result
}

// build collects hook contributions across the trail and resolves each
// library's path.
func (r *Registry) build(ctx types.RequestContext) map[string]*types.LibraryInfo {
	trail := ctx.Trail
	if trail == nil {
		trail = r.themes.Trail(ctx.Theme)
	}

	merged := make(map[string]any)
	origin := make(map[string]string)
	for _, contribution := range r.hooks.Invoke(HookName, ctx, trail) {
		for name, data := range contribution.Data {
			if existing, ok := merged[name]; ok {
				merged[name] = mergeValue(existing, deepCopy(data))
			} else {
				merged[name] = deepCopy(data)
			}
			origin[name] = contribution.Theme
		}
	}

	result := make(map[string]*types.LibraryInfo, len(merged))
	for name, data := range merged {
		library := types.LibraryInfo{
			Name:  name,
			Theme: origin[name],
			Path:  r.resolvePath(name, trail),
		}
		if info, ok := data.(map[string]any); ok {
			library.Info = info
		} else {
			library.Info = map[string]any{"data": data}
		}

		library = r.alter.Apply(library, ctx)
		result[name] = &library
	}
	return result
}

// resolvePath probes the search order: trail libraries/<name>
// directories from the sub-theme upward, then registered locators, then
// the fixed site-level fallbacks. An unresolvable library keeps an
// empty path rather than failing.
func (r *Registry) resolvePath(name string, trail []types.TrailEntry) string {
	for i := len(trail) - 1; i >= 0; i-- {
		if theme, ok := r.themes.Get(trail[i].Machine); ok {
			candidate := filepath.Join(theme.Path, "libraries", name)
			if dirExists(candidate) {
				return candidate
			}
		}
	}

	for _, locate := range r.locators {
		if path, ok := locate(name); ok {
			return path
		}
	}

	root := r.paths.SiteRoot
	candidates := []string{filepath.Join(root, "libraries", name)}
	if r.paths.Profile != "" {
		candidates = append(candidates, filepath.Join(root, "profiles", r.paths.Profile, "libraries", name))
	}
	candidates = append(candidates, filepath.Join(root, "sites", "all", "libraries", name))
	if r.paths.Site != "" {
		candidates = append(candidates, filepath.Join(root, "sites", r.paths.Site, "libraries", name))
	}

	for _, candidate := range candidates {
		if dirExists(candidate) {
			return candidate
		}
	}
	return ""
}

// Invalidate drops the process-local library maps.
func (r *Registry) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.process = make(map[string]map[string]*types.LibraryInfo)
}

// mergeValue combines two hook contributions for the same key with the
// platform's recursive-merge semantics: maps merge key by key, while
// overlapping non-map values accumulate into a list instead of being
// overwritten. The list behavior is deliberate compatibility with
// existing theme extensions, not an accident.
func mergeValue(dst, src any) any {
	dstMap, dstIsMap := dst.(map[string]any)
	srcMap, srcIsMap := src.(map[string]any)
	if dstIsMap && srcIsMap {
		for key, value := range srcMap {
			if existing, ok := dstMap[key]; ok {
				dstMap[key] = mergeValue(existing, value)
			} else {
				dstMap[key] = value
			}
		}
		return dstMap
	}
	return append(toList(dst), toList(src)...)
}

func toList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// deepCopy protects hook implementations' returned maps from being
// mutated by subsequent merges.
func deepCopy(v any) any {
	switch value := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(value))
		for k, item := range value {
			result[k] = deepCopy(item)
		}
		return result
	case []any:
		result := make([]any, len(value))
		for i, item := range value {
			result[i] = deepCopy(item)
		}
		return result
	default:
		return v
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
