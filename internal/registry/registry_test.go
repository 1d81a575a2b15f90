package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegakit/omega/internal/types"
)

func TestNewThemeRegistry(t *testing.T) {
	r := NewThemeRegistry()

	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Count())
}

func TestRegister_DerivesLabel(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "omega_kickstart"})

	theme, ok := r.Get("omega_kickstart")
	require.True(t, ok)
	assert.Equal(t, "Omega Kickstart", theme.Name)
}

func TestTrail_BaseAndSub(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "base", Name: "Base"})
	r.Register(&types.ThemeInfo{Machine: "sub", Name: "Sub", Base: "base"})

	trail := r.Trail("sub")
	require.Len(t, trail, 2)
	assert.Equal(t, "base", trail[0].Machine)
	assert.Equal(t, "sub", trail[1].Machine)
}

func TestTrail_DeepChain(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "b1"})
	r.Register(&types.ThemeInfo{Machine: "b2", Base: "b1"})
	r.Register(&types.ThemeInfo{Machine: "leaf", Base: "b2"})

	trail := r.Trail("leaf")
	require.Len(t, trail, 3)
	assert.Equal(t, "b1", trail[0].Machine)
	assert.Equal(t, "b2", trail[1].Machine)
	assert.Equal(t, "leaf", trail[2].Machine)
}

func TestTrail_NoBase(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "standalone"})

	trail := r.Trail("standalone")
	require.Len(t, trail, 1)
	assert.Equal(t, "standalone", trail[0].Machine)
}

func TestTrail_UnknownTheme(t *testing.T) {
	r := NewThemeRegistry()

	// The queried theme is always the final entry, installed or not.
	trail := r.Trail("ghost")
	require.Len(t, trail, 1)
	assert.Equal(t, "ghost", trail[0].Machine)
	assert.Equal(t, "Ghost", trail[0].Name)
}

func TestTrail_MissingBaseTerminates(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "sub", Base: "gone"})

	trail := r.Trail("sub")
	require.Len(t, trail, 2)
	assert.Equal(t, "gone", trail[0].Machine)
	assert.Equal(t, "sub", trail[1].Machine)
}

func TestTrail_CycleGuard(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "a", Base: "b"})
	r.Register(&types.ThemeInfo{Machine: "b", Base: "a"})

	trail := r.Trail("a")
	require.Len(t, trail, 2)
	assert.Equal(t, "a", trail[1].Machine)
}

func TestTrail_MemoInvalidatedOnRegister(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "sub"})

	assert.Len(t, r.Trail("sub"), 1)

	r.Register(&types.ThemeInfo{Machine: "base"})
	r.Register(&types.ThemeInfo{Machine: "sub", Base: "base"})

	trail := r.Trail("sub")
	require.Len(t, trail, 2)
	assert.Equal(t, "base", trail[0].Machine)
}

func TestDescendants(t *testing.T) {
	r := NewThemeRegistry()
	r.Register(&types.ThemeInfo{Machine: "base", Path: "/themes/base"})
	r.Register(&types.ThemeInfo{Machine: "mid", Base: "base", Path: "/themes/mid"})
	r.Register(&types.ThemeInfo{Machine: "leaf", Base: "mid", Path: "/themes/leaf"})
	r.Register(&types.ThemeInfo{Machine: "other", Path: "/themes/other"})

	descendants := r.Descendants("base")
	assert.Equal(t, map[string]string{
		"mid":  "/themes/mid",
		"leaf": "/themes/leaf",
	}, descendants)

	assert.Empty(t, r.Descendants("other"))
}

func TestWatch_Events(t *testing.T) {
	r := NewThemeRegistry()
	events := r.Watch()

	r.Register(&types.ThemeInfo{Machine: "base"})
	event := <-events
	assert.Equal(t, types.EventTypeAdded, event.Type)
	assert.Equal(t, "base", event.Theme.Machine)

	r.Register(&types.ThemeInfo{Machine: "base"})
	event = <-events
	assert.Equal(t, types.EventTypeUpdated, event.Type)
}

func TestLoadFromRoots(t *testing.T) {
	root := t.TempDir()

	writeTheme := func(machine, contents string) {
		dir := filepath.Join(root, machine)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, machine+".info"), []byte(contents), 0o644))
	}

	writeTheme("base", "name = Base Theme\nsettings[toggle_extension_css] = 1\n")
	writeTheme("sub", "name = Sub Theme\nbase theme = base\n")

	// A directory without an info file is not a theme.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not_a_theme"), 0o755))

	r := NewThemeRegistry()
	require.NoError(t, r.LoadFromRoots([]string{root, filepath.Join(root, "missing_root")}))

	assert.Equal(t, 2, r.Count())

	base, ok := r.Get("base")
	require.True(t, ok)
	assert.Equal(t, "Base Theme", base.Name)
	assert.Equal(t, "1", base.Settings["toggle_extension_css"])
	assert.True(t, base.Enabled)

	sub, ok := r.Get("sub")
	require.True(t, ok)
	assert.Equal(t, "base", sub.Base)

	trail := r.Trail("sub")
	require.Len(t, trail, 2)
	assert.Equal(t, "base", trail[0].Machine)
}

func TestDeriveLabel(t *testing.T) {
	assert.Equal(t, "Omega", DeriveLabel("omega"))
	assert.Equal(t, "My Sub Theme", DeriveLabel("my_sub_theme"))
}
