// Package registry manages the set of installed themes and resolves
// theme trails: the ordered ancestor chain from the deepest base theme
// to a given theme. Trails are memoized per theme and invalidated when
// the theme set changes.
package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/omegakit/omega/internal/infofile"
	"github.com/omegakit/omega/internal/types"
)

// ThemeRegistry holds all installed themes.
type ThemeRegistry struct {
	themes   map[string]*types.ThemeInfo
	trails   map[string][]types.TrailEntry
	mutex    sync.RWMutex
	watchers []chan types.ThemeEvent
}

// NewThemeRegistry creates an empty theme registry.
func NewThemeRegistry() *ThemeRegistry {
	return &ThemeRegistry{
		themes:   make(map[string]*types.ThemeInfo),
		trails:   make(map[string][]types.TrailEntry),
		watchers: make([]chan types.ThemeEvent, 0),
	}
}

// Register adds or updates a theme. Trail memos are dropped because any
// theme change can reshape ancestor chains.
func (r *ThemeRegistry) Register(theme *types.ThemeInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if theme.Name == "" {
		theme.Name = DeriveLabel(theme.Machine)
	}

	eventType := types.EventTypeAdded
	if _, exists := r.themes[theme.Machine]; exists {
		eventType = types.EventTypeUpdated
	}

	r.themes[theme.Machine] = theme
	r.trails = make(map[string][]types.TrailEntry)

	r.notify(types.ThemeEvent{
		Type:      eventType,
		Theme:     theme,
		Timestamp: time.Now(),
	})
}

// Get retrieves a theme by machine name.
func (r *ThemeRegistry) Get(machine string) (*types.ThemeInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	theme, exists := r.themes[machine]
	return theme, exists
}

// All returns a copy of the installed-theme map.
func (r *ThemeRegistry) All() map[string]*types.ThemeInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.ThemeInfo, len(r.themes))
	for machine, theme := range r.themes {
		result[machine] = theme
	}
	return result
}

// Count returns the number of installed themes.
func (r *ThemeRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.themes)
}

// Trail returns the theme trail for machine: deepest base theme first,
// the queried theme always last, even when it declares no base or is
// not installed at all. Results are memoized until the theme set
// changes.
func (r *ThemeRegistry) Trail(machine string) []types.TrailEntry {
	r.mutex.RLock()
	if trail, ok := r.trails[machine]; ok {
		r.mutex.RUnlock()
		return trail
	}
	r.mutex.RUnlock()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if trail, ok := r.trails[machine]; ok {
		return trail
	}

	trail := r.buildTrail(machine)
	r.trails[machine] = trail
	return trail
}

// buildTrail walks the declared base chain. A cycle or an uninstalled
// base terminates the walk rather than failing.
func (r *ThemeRegistry) buildTrail(machine string) []types.TrailEntry {
	var chain []types.TrailEntry
	seen := make(map[string]bool)

	current := machine
	for current != "" && !seen[current] {
		seen[current] = true

		entry := types.TrailEntry{Machine: current, Name: DeriveLabel(current)}
		next := ""
		if theme, ok := r.themes[current]; ok {
			entry.Name = theme.Name
			next = theme.Base
		}
		chain = append(chain, entry)
		current = next
	}

	// The walk collects sub-theme first; the trail wants deepest base first.
	trail := make([]types.TrailEntry, len(chain))
	for i, entry := range chain {
		trail[len(chain)-1-i] = entry
	}
	return trail
}

// Descendants returns the machine names and paths of every installed
// theme whose trail passes through base, excluding base itself. The
// discoverer uses this to keep base-theme scans out of sub-theme
// directories.
func (r *ThemeRegistry) Descendants(base string) map[string]string {
	result := make(map[string]string)
	for machine, theme := range r.All() {
		if machine == base {
			continue
		}
		for _, entry := range r.Trail(machine) {
			if entry.Machine == base {
				result[machine] = theme.Path
				break
			}
		}
	}
	return result
}

// Reset drops all themes and memoized trails.
func (r *ThemeRegistry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.themes = make(map[string]*types.ThemeInfo)
	r.trails = make(map[string][]types.TrailEntry)
}

// Watch returns a channel that receives theme events.
func (r *ThemeRegistry) Watch() <-chan types.ThemeEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.ThemeEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// notify requires the write lock to be held.
func (r *ThemeRegistry) notify(event types.ThemeEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// LoadFromRoots scans each root directory for theme directories
// containing a <name>.info file and registers them. Directories without
// an info file or with an unparsable one are skipped silently.
func (r *ThemeRegistry) LoadFromRoots(roots []string) error {
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			machine := entry.Name()
			dir := filepath.Join(root, machine)
			theme, ok := loadTheme(machine, dir)
			if !ok {
				continue
			}
			r.Register(theme)
		}
	}
	return nil
}

func loadTheme(machine, dir string) (*types.ThemeInfo, bool) {
	info, err := infofile.ParseFile(filepath.Join(dir, machine+".info"))
	if err != nil {
		return nil, false
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	theme := &types.ThemeInfo{
		Machine:  machine,
		Path:     abs,
		Enabled:  true,
		Settings: infofile.Map(info, "settings"),
		Info:     info,
	}
	if name, ok := infofile.String(info, "name"); ok {
		theme.Name = name
	}
	if base, ok := infofile.String(info, "base theme"); ok {
		theme.Base = base
	}
	if disabled, ok := infofile.Bool(info, "disabled"); ok && disabled {
		theme.Enabled = false
	}
	return theme, true
}

var labelCaser = cases.Title(language.Und)

// DeriveLabel turns a machine name like "omega_kickstart" into a
// human-readable label when the info file declares none.
func DeriveLabel(machine string) string {
	return labelCaser.String(strings.ReplaceAll(machine, "_", " "))
}
