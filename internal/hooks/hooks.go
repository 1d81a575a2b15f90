// Package hooks provides the explicit extension points that replace the
// hosting platform's name-convention dispatch: a registry of hook
// implementations keyed by (hook name, theme), and ordered alteration
// chains that transform descriptor values as a fold.
package hooks

import (
	"sync"

	"github.com/omegakit/omega/internal/types"
)

// Func is a hook implementation. It returns a data contribution that
// the caller merges; nil contributions are skipped.
type Func func(ctx types.RequestContext) map[string]any

// Registry maps hook names to per-theme implementations. Themes
// register their implementations at load time; callers invoke by
// iterating the theme trail, which preserves trail-order semantics
// without dynamic symbol lookup.
type Registry struct {
	mutex sync.RWMutex
	hooks map[string]map[string][]Func // hook name -> theme -> implementations
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]map[string][]Func)}
}

// Register adds an implementation of hook contributed by theme.
func (r *Registry) Register(hook, theme string, fn Func) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.hooks[hook] == nil {
		r.hooks[hook] = make(map[string][]Func)
	}
	r.hooks[hook][theme] = append(r.hooks[hook][theme], fn)
}

// Invoke runs every implementation of hook registered by the trail's
// themes, in trail order, and returns the contributions in invocation
// order together with the contributing theme.
func (r *Registry) Invoke(hook string, ctx types.RequestContext, trail []types.TrailEntry) []Contribution {
	r.mutex.RLock()
	byTheme := r.hooks[hook]
	r.mutex.RUnlock()

	if len(byTheme) == 0 {
		return nil
	}

	var results []Contribution
	for _, entry := range trail {
		for _, fn := range byTheme[entry.Machine] {
			if data := fn(ctx); data != nil {
				results = append(results, Contribution{Theme: entry.Machine, Data: data})
			}
		}
	}
	return results
}

// Contribution is one hook implementation's returned data, tagged with
// its origin theme.
type Contribution struct {
	Theme string
	Data  map[string]any
}

// AlterFunc transforms a descriptor value. Implementations must treat
// the input as immutable and return the replacement.
type AlterFunc[T any] func(value T, ctx types.RequestContext) T

// AlterChain is an ordered list of transforms applied as a fold, the
// explicit replacement for mutate-by-reference alteration hooks.
type AlterChain[T any] struct {
	mutex sync.RWMutex
	fns   []AlterFunc[T]
}

// NewAlterChain creates an empty chain.
func NewAlterChain[T any]() *AlterChain[T] {
	return &AlterChain[T]{}
}

// Add appends a transform to the chain.
func (c *AlterChain[T]) Add(fn AlterFunc[T]) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.fns = append(c.fns, fn)
}

// Apply folds the registered transforms over value in registration order.
func (c *AlterChain[T]) Apply(value T, ctx types.RequestContext) T {
	c.mutex.RLock()
	fns := c.fns
	c.mutex.RUnlock()

	for _, fn := range fns {
		value = fn(value, ctx)
	}
	return value
}

// Len returns the number of registered transforms.
func (c *AlterChain[T]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.fns)
}
