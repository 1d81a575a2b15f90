// Package types provides common type definitions used throughout the Omega CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import "time"

// ThemeInfo describes an installed theme as read from its info file,
// including its position in the base-theme hierarchy. Instances are
// created when themes are loaded and are read-only afterwards.
type ThemeInfo struct {
	// Machine is the theme's machine name (e.g., "omega", "my_subtheme")
	Machine string
	// Name is the human-readable label declared in the info file; derived
	// from the machine name when the info file declares none
	Name string
	// Path is the absolute path to the theme's root directory
	Path string
	// Base is the machine name of the declared base theme, empty for root themes
	Base string
	// Enabled reports whether the hosting site has the theme enabled
	Enabled bool
	// Settings holds the theme's declared setting defaults (the
	// settings[...] block of its info file)
	Settings map[string]any
	// Info holds the remaining parsed info-file data verbatim
	Info map[string]any
}

// TrailEntry is one step of a theme trail: the ordered ancestor chain
// from the deepest base theme to the queried theme.
type TrailEntry struct {
	// Machine is the theme's machine name
	Machine string
	// Name is the theme's human-readable label
	Name string
}

// RequestContext carries the per-request theme state that the hosting
// platform kept in globals. It is constructed once at request start and
// passed explicitly to every resolver call.
type RequestContext struct {
	// Theme is the machine name of the active theme
	Theme string
	// Trail optionally carries the precomputed trail for the active theme.
	// When non-nil it is used verbatim instead of walking the registry.
	Trail []TrailEntry
}

// Definition is a raw discovered plugin definition before any
// registry-specific processing (enablement, asset resolution).
type Definition struct {
	// Name is the definition name, taken from the file base name
	Name string
	// Path is the absolute path of the definition file
	Path string
	// Theme is the machine name of the theme the file was found in
	Theme string
	// Info holds the parsed info-file contents
	Info map[string]any
}

// ExtensionInfo describes a discovered theme extension with its derived
// enablement state.
type ExtensionInfo struct {
	// Name is the extension machine name
	Name string `yaml:"name"`
	// Path is the absolute path of the extension's definition file
	Path string `yaml:"path"`
	// Theme is the machine name of the theme providing the extension
	Theme string `yaml:"theme"`
	// Info holds the parsed definition data
	Info map[string]any `yaml:"info"`
	// Enabled is derived from the toggle_extension_<name> setting,
	// falling back to the definition's declared default
	Enabled bool `yaml:"enabled"`
	// Errors is true when a declared dependency is missing or
	// version-incompatible; extensions with errors never activate
	Errors bool `yaml:"errors"`
}

// StyleAsset is a stylesheet attached to a layout, resolved to an
// existing file.
type StyleAsset struct {
	// Path is the resolved path of the stylesheet
	Path string `yaml:"path"`
	// Media is the declared media group (e.g., "all", "screen", "print")
	Media string `yaml:"media"`
	// Weight orders the asset relative to other attached stylesheets
	Weight int `yaml:"weight"`
}

// ScriptAsset is a script attached to a layout, resolved to an existing file.
type ScriptAsset struct {
	// Path is the resolved path of the script
	Path string `yaml:"path"`
	// Weight orders the asset relative to other attached scripts
	Weight int `yaml:"weight"`
}

// AssetWeight is the fixed weight assigned to layout assets so they sort
// ahead of theme-level overrides.
const AssetWeight = -10

// LayoutInfo describes a discovered page layout and its resolved assets.
type LayoutInfo struct {
	// Name is the layout machine name
	Name string `yaml:"name"`
	// Template is the template identifier, defaulting to the layout name
	Template string `yaml:"template"`
	// Theme is the machine name of the theme providing the layout
	Theme string `yaml:"theme"`
	// Path is the absolute path of the layout's definition file
	Path string `yaml:"path"`
	// Info holds the parsed definition data
	Info map[string]any `yaml:"info"`
	// Stylesheets are the layout's resolved stylesheet attachments
	Stylesheets []StyleAsset `yaml:"stylesheets"`
	// Scripts are the layout's resolved script attachments
	Scripts []ScriptAsset `yaml:"scripts"`
}

// LibraryInfo describes an externally provided asset library contributed
// through the libraries hook.
type LibraryInfo struct {
	// Name is the library name
	Name string `yaml:"name"`
	// Path is the resolved library directory, empty when no candidate exists
	Path string `yaml:"path"`
	// Theme is the machine name of the trail theme that contributed the entry
	Theme string `yaml:"theme"`
	// Info holds the merged hook contributions for this library
	Info map[string]any `yaml:"info"`
}

// EventType represents the type of theme registry change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// ThemeEvent represents a change in the theme registry, used for
// notifications to watchers like the cache invalidator and the CLI.
type ThemeEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Theme contains the theme information (may be nil for removed events)
	Theme *ThemeInfo
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
