// Package receiver routes document events into the builders of spatial
// types.
//
// A run has two phases. During registration every builder gets a Context
// for its own type and binds handlers to event names with For, or
// post-stream steps with After. Seal ends registration; from then on the
// event table is read-only and Dispatch feeds each event to the handlers
// bound to its name.
package receiver

import (
	"errors"
	"fmt"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

var (
	// ErrSealed is returned when registering after Seal
	ErrSealed = errors.New("receiver is sealed")
	// ErrNotSealed is returned when dispatching before Seal
	ErrNotSealed = errors.New("receiver is not sealed")
	// ErrRecursiveDispatch is returned when a handler dispatches an event
	ErrRecursiveDispatch = errors.New("recursive dispatch")
)

// Handler builds one object from an event. Returning nil skips the event.
type Handler func(ev event.Event) *spatial.Object

// AfterFunc builds objects once the event stream is exhausted
type AfterFunc func(deps Deps) ([]*spatial.Object, error)

type listener struct {
	owner   string
	handler Handler
}

type afterStep struct {
	owner string
	deps  Deps
	fn    AfterFunc
}

// Receiver holds the event table of one run. It is not safe for concurrent
// use.
type Receiver struct {
	store       *spatial.Store
	listeners   map[string][]listener
	after       []afterStep
	sealed      bool
	dispatching bool
	dispatched  int
	produced    int
}

// New creates a receiver that appends objects to store
func New(store *spatial.Store) *Receiver {
	return &Receiver{
		store:     store,
		listeners: make(map[string][]listener),
	}
}

// Begin makes typeName the operating type and returns its registration
// context. deps are the types its post-stream steps may read.
func (r *Receiver) Begin(typeName string, deps []string) *Context {
	r.store.Declare(typeName)

	allowed := make(map[string]bool, len(deps))
	for _, d := range deps {
		allowed[d] = true
	}
	return &Context{
		r:        r,
		typeName: typeName,
		deps:     Deps{store: r.store, owner: typeName, allowed: allowed},
	}
}

// Seal ends the registration phase
func (r *Receiver) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called
func (r *Receiver) Sealed() bool {
	return r.sealed
}

// Listening reports whether any handler is bound to eventName
func (r *Receiver) Listening(eventName string) bool {
	return len(r.listeners[eventName]) > 0
}

// Dispatch feeds ev to every handler bound to its name, in registration
// order. Events nobody listens to are ignored.
func (r *Receiver) Dispatch(ev event.Event) error {
	if !r.sealed {
		return ErrNotSealed
	}
	if r.dispatching {
		return ErrRecursiveDispatch
	}

	ls := r.listeners[ev.Name]
	if len(ls) == 0 {
		return nil
	}

	r.dispatching = true
	defer func() { r.dispatching = false }()

	r.dispatched++
	for _, l := range ls {
		if obj := l.handler(ev); obj != nil {
			r.store.Append(l.owner, obj)
			r.produced++
		}
	}
	return nil
}

// Finish runs the post-stream steps in registration order
func (r *Receiver) Finish() error {
	if !r.sealed {
		return ErrNotSealed
	}
	for _, step := range r.after {
		objs, err := step.fn(step.deps)
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", step.owner, err)
		}
		r.store.Append(step.owner, objs...)
		r.produced += len(objs)
	}
	return nil
}

// Dispatched returns how many events reached at least one handler
func (r *Receiver) Dispatched() int {
	return r.dispatched
}

// Produced returns how many objects handlers and post-stream steps created
func (r *Receiver) Produced() int {
	return r.produced
}

// Context is the registration view of one operating type
type Context struct {
	r        *Receiver
	typeName string
	deps     Deps
}

// Type returns the operating type name
func (c *Context) Type() string {
	return c.typeName
}

// For binds handler to eventName for the operating type. Registrations for
// an event name already bound by another type are merged.
func (c *Context) For(eventName string, handler Handler) error {
	if c.r.sealed {
		return ErrSealed
	}
	if !event.Known(eventName) {
		return &spatial.UnknownEventError{Type: c.typeName, Event: eventName}
	}
	if handler == nil {
		return &spatial.ConfigurationError{Type: c.typeName, Reason: "nil handler for " + eventName}
	}

	c.r.listeners[eventName] = append(c.r.listeners[eventName], listener{
		owner:   c.typeName,
		handler: handler,
	})
	return nil
}

// After registers a step that runs after the event stream, once every
// earlier type has finished
func (c *Context) After(fn AfterFunc) error {
	if c.r.sealed {
		return ErrSealed
	}
	if fn == nil {
		return &spatial.ConfigurationError{Type: c.typeName, Reason: "nil post-stream step"}
	}

	c.r.after = append(c.r.after, afterStep{
		owner: c.typeName,
		deps:  c.deps,
		fn:    fn,
	})
	return nil
}

// Deps gives a post-stream step read access to its declared dependencies
type Deps struct {
	store   *spatial.Store
	owner   string
	allowed map[string]bool
}

// Objects returns copies of a dependency's objects. Only declared
// dependencies are readable.
func (d Deps) Objects(name string) ([]*spatial.Object, error) {
	if !d.allowed[name] {
		return nil, &spatial.UnknownDependencyError{Type: d.owner, Dependency: name}
	}
	return d.store.Snapshot(name)
}
