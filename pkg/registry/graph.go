package registry

import (
	"sort"

	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

const (
	unvisited = iota
	visiting
	done
)

// resolver walks the dependency graph depth-first, emitting types in
// post-order so every dependency precedes its dependents.
type resolver struct {
	r     *Registry
	state map[string]int
	path  []string
	out   []string
}

func (r *Registry) newResolver() *resolver {
	return &resolver{
		r:     r,
		state: make(map[string]int, len(r.types)),
	}
}

// Resolve returns the execution order for the requested types: each type
// appears once, after all of its transitive dependencies, and only types
// required by the request are included. Types without an ordering
// constraint between them keep declaration order.
func (r *Registry) Resolve(requested []string) ([]string, error) {
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		if _, ok := r.types[name]; !ok {
			return nil, &spatial.UnknownTypeError{Name: name}
		}
		want[name] = true
	}

	res := r.newResolver()
	for _, name := range r.order {
		if !want[name] {
			continue
		}
		if err := res.visit(name); err != nil {
			return nil, err
		}
	}
	return res.out, nil
}

// Validate checks every registered type: all dependencies are registered
// and the dependency relation is acyclic.
func (r *Registry) Validate() error {
	res := r.newResolver()
	for _, name := range r.order {
		if err := res.visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (res *resolver) visit(name string) error {
	switch res.state[name] {
	case done:
		return nil
	case visiting:
		start := 0
		for i, n := range res.path {
			if n == name {
				start = i
				break
			}
		}
		cycle := make([]string, 0, len(res.path)-start+1)
		cycle = append(cycle, res.path[start:]...)
		cycle = append(cycle, name)
		return &spatial.CyclicDependencyError{Cycle: cycle}
	}

	t := res.r.types[name]
	for _, dep := range t.Dependencies {
		if _, ok := res.r.types[dep]; !ok {
			return &spatial.UnknownDependencyError{Type: name, Dependency: dep}
		}
	}

	res.state[name] = visiting
	res.path = append(res.path, name)

	for _, dep := range res.r.declarationOrder(t.Dependencies) {
		if err := res.visit(dep); err != nil {
			return err
		}
	}

	res.path = res.path[:len(res.path)-1]
	res.state[name] = done
	res.out = append(res.out, name)
	return nil
}

// declarationOrder returns registered names sorted by declaration index,
// without duplicates.
func (r *Registry) declarationOrder(names []string) []string {
	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return r.types[sorted[i]].index < r.types[sorted[j]].index
	})
	return sorted
}
