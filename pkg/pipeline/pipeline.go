// Package pipeline drives one extraction run: it resolves the requested
// spatial types, runs their builders, streams the document events through a
// receiver and returns the populated object lists.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/registry"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// ErrSource marks a run that failed while reading the document events
var ErrSource = errors.New("failed to read document events")

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for run diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pipeline runs extractions against a frozen registry. It is safe for
// concurrent use; every Run gets its own receiver and object store.
type Pipeline struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New freezes reg, validates the whole dependency graph and returns a
// pipeline over it
func New(reg *registry.Registry, opts ...Option) (*Pipeline, error) {
	if reg == nil {
		return nil, errors.New("nil registry")
	}
	reg.Freeze()
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spatial type registry: %w", err)
	}

	p := &Pipeline{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Registry returns the registry the pipeline runs against
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// Run extracts the requested spatial types from source. Structural errors
// are reported before source is read. A run either returns the complete
// result or an error, never a partial result.
func (p *Pipeline) Run(ctx context.Context, requested []string, source event.Source) (res *Result, err error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	ctx, span := startRunSpan(ctx, runID, requested)
	var rcv *receiver.Receiver
	defer func() {
		endSpan(span, err)
		dispatched, produced := 0, 0
		if rcv != nil {
			dispatched, produced = rcv.Dispatched(), rcv.Produced()
		}
		recordRunMetrics(ctx, time.Since(start), dispatched, produced, err == nil)
	}()

	order, err := p.registry.Resolve(requested)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve spatial types: %w", err)
	}
	logger.Debug("resolved spatial types", "requested", requested, "order", order)

	store := spatial.NewStore()
	rcv = receiver.New(store)
	for _, name := range order {
		if err := p.build(ctx, rcv, name); err != nil {
			return nil, err
		}
	}
	rcv.Seal()

	if len(order) > 0 {
		if source == nil {
			return nil, errors.New("nil document source")
		}
		if err := source.ForEach(ctx, rcv.Dispatch); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSource, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rcv.Finish(); err != nil {
			return nil, err
		}
	}

	explicit := make(map[string]bool, len(requested))
	for _, name := range requested {
		explicit[name] = true
	}

	logger.Info("extraction finished",
		"types", len(order),
		"events", rcv.Dispatched(),
		"objects", rcv.Produced(),
		"duration", time.Since(start))

	return &Result{
		RunID:    runID,
		Order:    order,
		store:    store,
		explicit: explicit,
	}, nil
}

func (p *Pipeline) build(ctx context.Context, rcv *receiver.Receiver, name string) (err error) {
	_, span := startBuildSpan(ctx, name)
	defer func() { endSpan(span, err) }()

	t, err := p.registry.Lookup(name)
	if err != nil {
		return err
	}
	if err := t.Builder(rcv.Begin(t.Name, t.Dependencies)); err != nil {
		return fmt.Errorf("failed to build %s: %w", t.Name, err)
	}
	return nil
}

// Result is the outcome of one run: the object list of every resolved type
// and which of them were requested explicitly
type Result struct {
	RunID string
	// Order is the resolved execution order
	Order []string

	store    *spatial.Store
	explicit map[string]bool
}

// Objects returns the objects of a produced type
func (r *Result) Objects(name string) ([]*spatial.Object, error) {
	return r.store.Objects(name)
}

// Each calls fn for every object of a type, stopping at the first error
func (r *Result) Each(name string, fn func(*spatial.Object) error) error {
	objs, err := r.store.Objects(name)
	if err != nil {
		return err
	}
	for _, o := range objs {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

// Alter applies schema to every object of a type. A failing object is left
// unchanged and does not stop the others; all failures are returned joined.
func (r *Result) Alter(name string, schema spatial.Schema) error {
	objs, err := r.store.Objects(name)
	if err != nil {
		return err
	}
	var errs []error
	for i, o := range objs {
		if err := o.Alter(schema); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", name, i, err))
		}
	}
	return errors.Join(errs...)
}

// Explicit reports whether a type was requested directly rather than
// produced as a dependency
func (r *Result) Explicit(name string) bool {
	return r.explicit[name]
}

// Types returns produced type names in execution order
func (r *Result) Types() []string {
	types := make([]string, len(r.Order))
	copy(types, r.Order)
	return types
}
