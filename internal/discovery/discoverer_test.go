package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/types"
)

// writeFile creates path with its parent directories.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestKind_TrailScoped(t *testing.T) {
	assert.True(t, KindExtension.TrailScoped())
	assert.False(t, KindLayout.TrailScoped())
}

func TestDiscover_TrailMergeAndOverride(t *testing.T) {
	root := t.TempDir()
	basePath := filepath.Join(root, "base")
	subPath := filepath.Join(root, "sub")

	writeFile(t, filepath.Join(basePath, "extensions", "css.extension"), "name = CSS\n")
	writeFile(t, filepath.Join(basePath, "extensions", "dev.extension"), "name = Base Dev\n")
	writeFile(t, filepath.Join(subPath, "extensions", "dev.extension"), "name = Sub Dev\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "base", Path: basePath})
	reg.Register(&types.ThemeInfo{Machine: "sub", Base: "base", Path: subPath})

	d := NewDiscoverer(reg, nil, nil)
	defs := d.Discover(KindExtension, "sub")

	require.Len(t, defs, 2)
	assert.Equal(t, "base", defs["css"].Theme)

	// The sub theme's definition overrides the base theme's.
	assert.Equal(t, "sub", defs["dev"].Theme)
	name, _ := defs["dev"].Info["name"].(string)
	assert.Equal(t, "Sub Dev", name)
}

func TestDiscover_ExcludesNestedSubThemes(t *testing.T) {
	root := t.TempDir()
	basePath := filepath.Join(root, "base")
	// The sub theme lives inside the base theme's directory.
	subPath := filepath.Join(basePath, "subthemes", "sub")

	writeFile(t, filepath.Join(basePath, "css.extension"), "name = CSS\n")
	writeFile(t, filepath.Join(subPath, "local.extension"), "name = Local\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "base", Path: basePath})
	reg.Register(&types.ThemeInfo{Machine: "sub", Base: "base", Path: subPath})

	d := NewDiscoverer(reg, nil, nil)

	// The base theme's pass must not pick up the sub theme's files.
	baseDefs := d.Discover(KindExtension, "base")
	require.Len(t, baseDefs, 1)
	assert.Contains(t, baseDefs, "css")

	// The sub theme's pass sees both its own and inherited definitions.
	subDefs := d.Discover(KindExtension, "sub")
	require.Len(t, subDefs, 2)
	assert.Equal(t, "sub", subDefs["local"].Theme)
}

func TestDiscover_LegacySuffixAndShadowing(t *testing.T) {
	root := t.TempDir()
	themePath := filepath.Join(root, "theme")

	writeFile(t, filepath.Join(themePath, "old.extension.inc"), "name = Old Style\n")
	writeFile(t, filepath.Join(themePath, "both.extension"), "name = Modern\n")
	writeFile(t, filepath.Join(themePath, "both.extension.inc"), "name = Legacy\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "theme", Path: themePath})

	d := NewDiscoverer(reg, nil, nil)
	defs := d.Discover(KindExtension, "theme")

	require.Len(t, defs, 2)
	assert.Contains(t, defs, "old")

	name, _ := defs["both"].Info["name"].(string)
	assert.Equal(t, "Modern", name)
}

func TestDiscover_SkipsUnparsableAndDotDirs(t *testing.T) {
	root := t.TempDir()
	themePath := filepath.Join(root, "theme")

	writeFile(t, filepath.Join(themePath, "good.extension"), "name = Good\n")
	writeFile(t, filepath.Join(themePath, "broken.extension"), "no equals sign here\n")
	writeFile(t, filepath.Join(themePath, ".git", "hidden.extension"), "name = Hidden\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "theme", Path: themePath})

	d := NewDiscoverer(reg, nil, nil)
	defs := d.Discover(KindExtension, "theme")

	require.Len(t, defs, 1)
	assert.Contains(t, defs, "good")
}

func TestDiscover_Idempotent(t *testing.T) {
	root := t.TempDir()
	themePath := filepath.Join(root, "theme")
	writeFile(t, filepath.Join(themePath, "one.extension"), "name = One\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "theme", Path: themePath})

	d := NewDiscoverer(reg, nil, nil)
	first := d.Discover(KindExtension, "theme")
	second := d.Discover(KindExtension, "theme")

	assert.Equal(t, first, second)
	// The memoized pass performs no additional walk.
	assert.Equal(t, int64(1), d.ScanCount())

	d.Reset()
	third := d.Discover(KindExtension, "theme")
	assert.Equal(t, first, third)
	assert.Equal(t, int64(2), d.ScanCount())
}

func TestDiscover_LayoutsScanAllThemes(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "a")
	bPath := filepath.Join(root, "b")

	writeFile(t, filepath.Join(aPath, "layouts", "simple", "simple.layout"), "name = Simple\n")
	writeFile(t, filepath.Join(bPath, "layouts", "grid", "grid.layout"), "name = Grid\n")

	reg := registry.NewThemeRegistry()
	// a and b are unrelated themes; layouts come from both.
	reg.Register(&types.ThemeInfo{Machine: "a", Path: aPath})
	reg.Register(&types.ThemeInfo{Machine: "b", Path: bPath})

	d := NewDiscoverer(reg, nil, nil)
	defs := d.Discover(KindLayout, "a")

	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs["simple"].Theme)
	assert.Equal(t, "b", defs["grid"].Theme)

	// Trail-independent kinds share one memo across query themes.
	d.Discover(KindLayout, "b")
	assert.Equal(t, int64(2), d.ScanCount())
}

func TestDiscover_ExclusionRulesCached(t *testing.T) {
	root := t.TempDir()
	basePath := filepath.Join(root, "base")
	writeFile(t, filepath.Join(basePath, "css.extension"), "name = CSS\n")

	reg := registry.NewThemeRegistry()
	reg.Register(&types.ThemeInfo{Machine: "base", Path: basePath})
	reg.Register(&types.ThemeInfo{Machine: "sub", Base: "base", Path: filepath.Join(basePath, "sub")})

	c := cache.New(cache.NewMemoryCache(0), nil)
	d := NewDiscoverer(reg, c, nil)
	d.Discover(KindExtension, "base")

	_, ok := c.Get("exclude:base")
	assert.True(t, ok)
}
