// Package discovery finds declarative plugin definition files inside
// installed theme directories.
//
// A discovery pass walks the filesystem path of every candidate theme
// recursively, collecting files that match the kind's suffix (modern
// "*.<kind>" or legacy "*.<kind>.inc"), parses them as info files, and
// merges the results keyed by definition name so that a theme later in
// the trail overrides an earlier one. Sub-theme directories nested
// inside a base theme are excluded from the base theme's pass, so a
// definition is always attributed to the theme that owns it. Results
// are memoized per (theme, kind) until Reset.
package discovery

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/omegakit/omega/internal/cache"
	"github.com/omegakit/omega/internal/infofile"
	"github.com/omegakit/omega/internal/logging"
	"github.com/omegakit/omega/internal/registry"
	"github.com/omegakit/omega/internal/types"
)

// Kind names a discoverable definition type.
type Kind string

const (
	// KindExtension definitions are scoped to a theme trail.
	KindExtension Kind = "extension"
	// KindLayout definitions are trail-independent: every installed
	// theme contributes.
	KindLayout Kind = "layout"
)

// TrailScoped reports whether discovery for the kind follows the theme
// trail or scans every installed theme.
func (k Kind) TrailScoped() bool {
	return k != KindLayout
}

// excludeTTL bounds the cached sub-theme exclusion rules, which follow
// the temporary-cache policy rather than living until an explicit clear.
const excludeTTL = 5 * time.Minute

// Discoverer scans theme directories for definition files.
type Discoverer struct {
	registry *registry.ThemeRegistry
	cache    *cache.Cache
	logger   logging.Logger

	mutex sync.Mutex
	memo  map[string]map[string]*types.Definition
	scans int64
}

// NewDiscoverer creates a discoverer over the installed themes. The
// cache holds the temporary exclusion rules and may be nil.
func NewDiscoverer(reg *registry.ThemeRegistry, c *cache.Cache, logger logging.Logger) *Discoverer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Discoverer{
		registry: reg,
		cache:    c,
		logger:   logger.WithComponent("discovery"),
		memo:     make(map[string]map[string]*types.Definition),
	}
}

// Discover returns the definitions of kind visible to theme, keyed by
// definition name. Re-running without filesystem changes returns an
// identical result set.
func (d *Discoverer) Discover(kind Kind, theme string) map[string]*types.Definition {
	key := memoKey(kind, theme)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if result, ok := d.memo[key]; ok {
		return result
	}

	result := make(map[string]*types.Definition)
	for _, candidate := range d.candidates(kind, theme) {
		found := d.scanTheme(candidate, kind)
		// Later candidates override earlier ones with the same name.
		for name, def := range found {
			result[name] = def
		}
	}

	d.memo[key] = result
	return result
}

// Reset drops all memoized discovery results.
func (d *Discoverer) Reset() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.memo = make(map[string]map[string]*types.Definition)
}

// ScanCount returns the number of theme directory walks performed,
// used to verify that cached lookups touch no filesystem.
func (d *Discoverer) ScanCount() int64 {
	return atomic.LoadInt64(&d.scans)
}

func memoKey(kind Kind, theme string) string {
	if !kind.TrailScoped() {
		// Trail-independent kinds share one result set.
		theme = "*"
	}
	return theme + ":" + string(kind)
}

// candidates resolves the ordered theme set for a pass: the trail for
// trail-scoped kinds, every installed theme (sorted for determinism)
// otherwise.
func (d *Discoverer) candidates(kind Kind, theme string) []*types.ThemeInfo {
	if kind.TrailScoped() {
		var result []*types.ThemeInfo
		for _, entry := range d.registry.Trail(theme) {
			if info, ok := d.registry.Get(entry.Machine); ok {
				result = append(result, info)
			}
		}
		return result
	}

	all := d.registry.All()
	machines := make([]string, 0, len(all))
	for machine := range all {
		machines = append(machines, machine)
	}
	sort.Strings(machines)

	result := make([]*types.ThemeInfo, 0, len(all))
	for _, machine := range machines {
		result = append(result, all[machine])
	}
	return result
}

// scanTheme walks one theme directory for definition files of kind.
func (d *Discoverer) scanTheme(theme *types.ThemeInfo, kind Kind) map[string]*types.Definition {
	if theme.Path == "" {
		return nil
	}
	atomic.AddInt64(&d.scans, 1)

	excluded := d.exclusions(theme.Machine)
	modernSuffix := "." + string(kind)
	legacySuffix := modernSuffix + ".inc"

	found := make(map[string]*types.Definition)
	legacy := make(map[string]bool)

	_ = filepath.WalkDir(theme.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != theme.Path {
				return filepath.SkipDir
			}
			if underAny(path, excluded) {
				return filepath.SkipDir
			}
			return nil
		}

		name, isLegacy, ok := definitionName(entry.Name(), modernSuffix, legacySuffix)
		if !ok {
			return nil
		}
		// A modern definition shadows a legacy one with the same name.
		if _, exists := found[name]; exists && !legacy[name] && isLegacy {
			return nil
		}

		info, err := infofile.ParseFile(path)
		if err != nil {
			d.logger.Debug(context.Background(), "skipping unparsable definition",
				"path", path, "reason", err.Error())
			return nil
		}

		found[name] = &types.Definition{
			Name:  name,
			Path:  path,
			Theme: theme.Machine,
			Info:  info,
		}
		legacy[name] = isLegacy
		return nil
	})

	return found
}

// definitionName extracts the definition name from a file name matching
// either suffix. Legacy suffix is checked first because it is longer.
func definitionName(fileName, modernSuffix, legacySuffix string) (name string, isLegacy, ok bool) {
	if strings.HasSuffix(fileName, legacySuffix) {
		name = strings.TrimSuffix(fileName, legacySuffix)
		return name, true, name != ""
	}
	if strings.HasSuffix(fileName, modernSuffix) {
		name = strings.TrimSuffix(fileName, modernSuffix)
		return name, false, name != ""
	}
	return "", false, false
}

// exclusions returns the directory paths of theme's transitive
// sub-themes. The rule set is kept in the temporary cache tier because
// it is derived data that may be recomputed at any time.
func (d *Discoverer) exclusions(theme string) []string {
	cacheKey := "exclude:" + theme

	if d.cache != nil {
		if data, ok := d.cache.Get(cacheKey); ok {
			var paths []string
			if err := yaml.Unmarshal(data, &paths); err == nil {
				return paths
			}
		}
	}

	descendants := d.registry.Descendants(theme)
	paths := make([]string, 0, len(descendants))
	for _, path := range descendants {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if d.cache != nil {
		if data, err := yaml.Marshal(paths); err == nil {
			d.cache.SetTemporary(cacheKey, data, excludeTTL)
		}
	}
	return paths
}

// underAny reports whether path is one of the roots or nested below one.
func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
