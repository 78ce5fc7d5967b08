// Package registry stores spatial type declarations and resolves the order
// in which their builders run.
package registry

import (
	"sync/atomic"

	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// Builder registers the listeners and post-stream steps of one spatial type
type Builder func(c *receiver.Context) error

// Type is a registered spatial type
type Type struct {
	Name         string
	Dependencies []string
	Builder      Builder

	index int
}

// Registry holds spatial type declarations.
//
// Registration is NOT safe for concurrent use: register every type from a
// single goroutine, then Freeze. A frozen registry is read-only and may be
// shared by concurrent runs without locking.
type Registry struct {
	frozen atomic.Bool
	types  map[string]*Type
	order  []string
}

// New creates an empty registry
func New() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register declares a spatial type with its dependencies and builder
func (r *Registry) Register(name string, deps []string, builder Builder) error {
	if name == "" {
		return &spatial.ConfigurationError{Type: name, Reason: "empty type name"}
	}
	if builder == nil {
		return &spatial.ConfigurationError{Type: name, Reason: "nil builder"}
	}
	if r.frozen.Load() {
		return &spatial.ConfigurationError{Type: name, Reason: "registry is frozen"}
	}

	if _, exists := r.types[name]; exists {
		return &spatial.ConfigurationError{Type: name, Reason: "already registered"}
	}

	d := make([]string, len(deps))
	copy(d, deps)
	r.types[name] = &Type{
		Name:         name,
		Dependencies: d,
		Builder:      builder,
		index:        len(r.order),
	}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on error, for package-level setup
func (r *Registry) MustRegister(name string, deps []string, builder Builder) {
	if err := r.Register(name, deps, builder); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup returns a copy of a registered type. Changing the copy does not
// change the registry.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, &spatial.UnknownTypeError{Name: name}
	}
	c := *t
	c.Dependencies = append([]string(nil), t.Dependencies...)
	return &c, nil
}

// Names returns registered type names in declaration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
