// Package registry records compiled SDK module metadata for one build evaluation.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"sdkpcm/internal/sdk"
)

var (
	// ErrNotFound is returned by Get for unknown module names.
	ErrNotFound = errors.New("module not registered")
	// ErrCollision matches every *CollisionError.
	ErrCollision = errors.New("module registered twice")
)

// CollisionError reports a second registration of the same module name.
type CollisionError struct {
	Name     string
	Existing sdk.CompiledModule
}

func (e *CollisionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("module %q already registered (output %s)", e.Name, e.Existing.Output)
}

// Is makes errors.Is(err, ErrCollision) hold for any collision.
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// Registry maps module names to compiled module records. Entries are never
// removed. It performs no locking: callers serialize writes per build.
type Registry struct {
	byName map[string]sdk.CompiledModule
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]sdk.CompiledModule)}
}

// Set registers info under name. Registering a name twice is a caller bug and
// is reported as a *CollisionError; the existing entry is kept.
func (r *Registry) Set(name string, info sdk.CompiledModule) error {
	if name == "" {
		return fmt.Errorf("registry: empty module name")
	}
	if prev, ok := r.byName[name]; ok {
		return &CollisionError{Name: name, Existing: prev}
	}
	r.byName[name] = info
	return nil
}

// Get returns the record for name.
func (r *Registry) Get(name string) (sdk.CompiledModule, error) {
	info, ok := r.byName[name]
	if !ok {
		return sdk.CompiledModule{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return info, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every record ordered by module name.
func (r *Registry) All() []sdk.CompiledModule {
	names := r.Names()
	out := make([]sdk.CompiledModule, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}
