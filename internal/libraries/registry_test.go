package libraries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/hooks"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/types"
)

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

type fixture struct {
	themes *registry.ThemeRegistry
	hooks  *hooks.Registry
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	basePath := filepath.Join(root, "themes", "base")
	subPath := filepath.Join(root, "themes", "sub")
	mkdir(t, basePath)
	mkdir(t, subPath)

	themes := registry.NewThemeRegistry()
	themes.Register(&types.ThemeInfo{Machine: "base", Path: basePath})
	themes.Register(&types.ThemeInfo{Machine: "sub", Base: "base", Path: subPath})

	return &fixture{themes: themes, hooks: hooks.NewRegistry(), root: root}
}

func (f *fixture) newRegistry(c *cache.Cache) *Registry {
	return NewRegistry(f.themes, f.hooks, c, Paths{
		SiteRoot: f.root,
		Profile:  "standard",
		Site:     "default",
	}, nil)
}

func TestAll_CollectsAcrossTrailWithOriginTags(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"selectivizr": map[string]any{"label": "Selectivizr"}}
	})
	f.hooks.Register(HookName, "sub", func(types.RequestContext) map[string]any {
		return map[string]any{"html5shiv": map[string]any{"label": "HTML5 Shiv"}}
	})

	all := f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, false)
	require.Len(t, all, 2)
	assert.Equal(t, "base", all["selectivizr"].Theme)
	assert.Equal(t, "sub", all["html5shiv"].Theme)
	assert.Equal(t, "Selectivizr", all["selectivizr"].Info["label"])
}

func TestAll_RecursiveMergeAppendsOverlappingLeaves(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": map[string]any{
			"label": "Base Label",
			"files": []any{"a.js"},
		}}
	})
	f.hooks.Register(HookName, "sub", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": map[string]any{
			"label": "Sub Label",
			"files": []any{"b.js"},
			"extra": "only-sub",
		}}
	})

	all := f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, false)
	lib := all["lib"]
	require.NotNil(t, lib)

	// Overlapping scalar leaves accumulate instead of overwriting; this
	// mirrors the platform's recursive merge and is pinned on purpose.
	assert.Equal(t, []any{"Base Label", "Sub Label"}, lib.Info["label"])
	assert.Equal(t, []any{"a.js", "b.js"}, lib.Info["files"])
	assert.Equal(t, "only-sub", lib.Info["extra"])

	// The later contributor owns the merged entry.
	assert.Equal(t, "sub", lib.Theme)
}

func TestResolvePath_TrailDirectoryWins(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"html5shiv": map[string]any{}}
	})

	// The library exists in the base theme, the sub theme, and site-wide;
	// the sub theme (deepest trail entry) wins.
	sub, _ := f.themes.Get("sub")
	base, _ := f.themes.Get("base")
	mkdir(t, filepath.Join(base.Path, "libraries", "html5shiv"))
	mkdir(t, filepath.Join(sub.Path, "libraries", "html5shiv"))
	mkdir(t, filepath.Join(f.root, "sites", "all", "libraries", "html5shiv"))

	all := f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, false)
	assert.Equal(t, filepath.Join(sub.Path, "libraries", "html5shiv"), all["html5shiv"].Path)
}

func TestResolvePath_LocatorBeforeFallbacks(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"html5shiv": map[string]any{}}
	})
	mkdir(t, filepath.Join(f.root, "libraries", "html5shiv"))

	r := f.newRegistry(nil)
	r.AddLocator(func(name string) (string, bool) {
		return "/managed/" + name, true
	})

	all := r.All(types.RequestContext{Theme: "sub"}, false)
	assert.Equal(t, "/managed/html5shiv", all["html5shiv"].Path)
}

func TestResolvePath_FallbackOrder(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": map[string]any{}}
	})

	// Only the per-site tier has the library.
	mkdir(t, filepath.Join(f.root, "sites", "default", "libraries", "lib"))
	all := f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, false)
	assert.Equal(t, filepath.Join(f.root, "sites", "default", "libraries", "lib"), all["lib"].Path)

	// Adding the profile tier takes precedence on a fresh build.
	mkdir(t, filepath.Join(f.root, "profiles", "standard", "libraries", "lib"))
	all = f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, true)
	assert.Equal(t, filepath.Join(f.root, "profiles", "standard", "libraries", "lib"), all["lib"].Path)

	// The site-root tier beats both.
	mkdir(t, filepath.Join(f.root, "libraries", "lib"))
	all = f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, true)
	assert.Equal(t, filepath.Join(f.root, "libraries", "lib"), all["lib"].Path)
}

func TestAll_UnresolvableLibraryKeepsEmptyPath(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"ghost": map[string]any{}}
	})

	all := f.newRegistry(nil).All(types.RequestContext{Theme: "sub"}, false)
	require.NotNil(t, all["ghost"])
	assert.Empty(t, all["ghost"].Path)
}

func TestAll_PersistentCacheServesSecondRegistry(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		calls++
		return map[string]any{"lib": map[string]any{"label": "Lib"}}
	})

	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := types.RequestContext{Theme: "sub"}

	first := f.newRegistry(cache.New(cache.NewMemoryCache(0), store))
	want := first.All(ctx, false)
	require.Equal(t, 1, calls)

	second := f.newRegistry(cache.New(cache.NewMemoryCache(0), store))
	got := second.All(ctx, false)

	// The hook is not re-invoked; the persisted mapping is identical.
	assert.Equal(t, 1, calls)
	assert.Equal(t, want["lib"].Info["label"], got["lib"].Info["label"])
}

func TestAll_AlterChain(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": map[string]any{}}
	})

	r := f.newRegistry(nil)
	r.Alter().Add(func(lib types.LibraryInfo, _ types.RequestContext) types.LibraryInfo {
		lib.Path = "/overridden"
		return lib
	})

	all := r.All(types.RequestContext{Theme: "sub"}, false)
	assert.Equal(t, "/overridden", all["lib"].Path)
}

func TestAll_ScalarContributionWrapped(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": "just-a-string"}
	})

	all := f.newRegistry(nil).All(types.RequestContext{Theme: "base"}, false)
	assert.Equal(t, "just-a-string", all["lib"].Info["data"])
}

func TestAll_ReturnedMapIsACopy(t *testing.T) {
	f := newFixture(t)
	f.hooks.Register(HookName, "base", func(types.RequestContext) map[string]any {
		return map[string]any{"lib": map[string]any{}}
	})

	r := f.newRegistry(nil)
	ctx := types.RequestContext{Theme: "sub"}

	first := r.All(ctx, false)
	require.NotNil(t, first["lib"])
	delete(first, "lib")

	// Mutating the returned map must not corrupt the process cache.
	assert.NotNil(t, r.All(ctx, false)["lib"])
}
