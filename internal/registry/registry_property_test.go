//go:build property
// +build property

package registry

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/omegakit/omega/internal/types"
)

// TestTrailProperties tests structural invariants of trail resolution
// over randomly generated linear theme chains.
func TestTrailProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: for a linear chain of depth n, the trail of the deepest
	// theme has length n, ends with the queried theme, and lists each
	// ancestor before every theme based on it.
	properties.Property("trail order on linear chains", prop.ForAll(
		func(depth int) bool {
			if depth < 1 || depth > 20 {
				return true // Skip out-of-range depths
			}

			reg := NewThemeRegistry()
			names := make([]string, depth)
			for i := 0; i < depth; i++ {
				names[i] = themeName(i)
				theme := &types.ThemeInfo{Machine: names[i]}
				if i > 0 {
					theme.Base = names[i-1]
				}
				reg.Register(theme)
			}

			trail := reg.Trail(names[depth-1])
			if len(trail) != depth {
				return false
			}
			if trail[len(trail)-1].Machine != names[depth-1] {
				return false
			}
			for i, entry := range trail {
				if entry.Machine != names[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	// Property: the trail of any theme in the chain is a prefix-closed
	// subchain: Trail(names[k]) equals the first k+1 entries.
	properties.Property("trail of an ancestor is a prefix", prop.ForAll(
		func(depth, query int) bool {
			if depth < 1 || depth > 20 {
				return true
			}
			k := query % depth
			if k < 0 {
				k = -k
			}

			reg := NewThemeRegistry()
			names := make([]string, depth)
			for i := 0; i < depth; i++ {
				names[i] = themeName(i)
				theme := &types.ThemeInfo{Machine: names[i]}
				if i > 0 {
					theme.Base = names[i-1]
				}
				reg.Register(theme)
			}

			trail := reg.Trail(names[k])
			if len(trail) != k+1 {
				return false
			}
			for i, entry := range trail {
				if entry.Machine != names[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.Int(),
	))

	// Property: Trail is memoized and stable: two calls return equal
	// slices.
	properties.Property("trail is stable across calls", prop.ForAll(
		func(depth int) bool {
			if depth < 1 || depth > 20 {
				return true
			}

			reg := NewThemeRegistry()
			for i := 0; i < depth; i++ {
				theme := &types.ThemeInfo{Machine: themeName(i)}
				if i > 0 {
					theme.Base = themeName(i - 1)
				}
				reg.Register(theme)
			}

			first := reg.Trail(themeName(depth - 1))
			second := reg.Trail(themeName(depth - 1))
			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}

func themeName(i int) string {
	return "theme_" + strconv.Itoa(i)
}
