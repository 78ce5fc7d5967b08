// Package pdfextract extracts spatial structure from PDF files: text runs,
// margins, rows and columns, regions, sections and bibliography references.
package pdfextract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pyhub-apps/pdfextract-golang/pkg/layout"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pipeline"
	"github.com/pyhub-apps/pdfextract-golang/pkg/references"
	"github.com/pyhub-apps/pdfextract-golang/pkg/registry"
	"github.com/pyhub-apps/pdfextract-golang/pkg/render"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// Re-export types for the public API
type (
	Registry = registry.Registry
	Result   = pipeline.Result
	Object   = spatial.Object
	Schema   = spatial.Schema
	Backend  = pdf.Backend
	Format   = render.Format
)

// Standard type names
const (
	Pages      = layout.Pages
	TextRuns   = layout.TextRuns
	VMargins   = layout.VMargins
	HMargins   = layout.HMargins
	Rows       = layout.Rows
	Columns    = layout.Columns
	Regions    = layout.Regions
	Sections   = layout.Sections
	References = references.Type
)

// NewRegistry returns a registry holding the layout types and the
// reference segmenter. More types may be registered before it is used.
func NewRegistry(layoutCfg layout.Config, refCfg references.Config) (*registry.Registry, error) {
	reg := registry.New()
	if err := layout.Register(reg, layoutCfg); err != nil {
		return nil, fmt.Errorf("failed to register layout types: %w", err)
	}
	if err := references.Register(reg, refCfg); err != nil {
		return nil, fmt.Errorf("failed to register references: %w", err)
	}
	return reg, nil
}

// Option configures an Extractor
type Option func(*Extractor)

// WithBackend fixes the PDF backend. Without it, backends are tried in
// turn until one can read the file.
func WithBackend(b pdf.Backend) Option {
	return func(e *Extractor) {
		e.backends = []pdf.Backend{b}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegistry replaces the standard registry
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Extractor) {
		e.registry = reg
	}
}

// Extractor parses PDF files into spatial objects. It is safe for
// concurrent use.
type Extractor struct {
	registry *registry.Registry
	pipeline *pipeline.Pipeline
	backends []pdf.Backend
	logger   *slog.Logger
}

// New creates an extractor over the standard types
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		backends: []pdf.Backend{pdf.Ledongthuc, pdf.Dslipak, pdf.PDFCPU},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		reg, err := NewRegistry(layout.DefaultConfig(), references.DefaultConfig())
		if err != nil {
			return nil, err
		}
		e.registry = reg
	}

	p, err := pipeline.New(e.registry, pipeline.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.pipeline = p
	return e, nil
}

// Types returns the registered type names
func (e *Extractor) Types() []string {
	return e.registry.Names()
}

// Backends returns the backends Parse tries, in order
func (e *Extractor) Backends() []pdf.Backend {
	return append([]pdf.Backend(nil), e.backends...)
}

// Parse extracts the requested types from the PDF at path. When a backend
// cannot read the file the next one is tried with a fresh run.
func (e *Extractor) Parse(ctx context.Context, path string, types ...string) (*pipeline.Result, error) {
	var errs []error
	for _, b := range e.backends {
		src := pdf.Open(path, pdf.WithBackend(b), pdf.WithLogger(e.logger))
		res, err := e.pipeline.Run(ctx, types, src)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, pipeline.ErrSource) || ctx.Err() != nil {
			return nil, err
		}
		e.logger.Debug("backend failed", "file", path, "backend", string(b), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", b, err))
	}
	return nil, fmt.Errorf("failed to parse %s: %w", path, errors.Join(errs...))
}

// Convert parses the PDF at path and renders the requested types to w
func (e *Extractor) Convert(ctx context.Context, path string, w io.Writer, format render.Format, types ...string) error {
	r, err := render.New(format)
	if err != nil {
		return err
	}
	res, err := e.Parse(ctx, path, types...)
	if err != nil {
		return err
	}
	return r.Render(w, res)
}
