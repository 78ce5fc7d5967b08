// Package render serializes the objects of an extraction run
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// Result is the data a renderer reads; *pipeline.Result implements it
type Result interface {
	Types() []string
	Explicit(name string) bool
	Objects(name string) ([]*spatial.Object, error)
}

// Renderer writes a result in one output format
type Renderer interface {
	Render(w io.Writer, res Result) error
}

// Format names an output format
type Format string

const (
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats
func Formats() []Format {
	return []Format{FormatXML, FormatHTML, FormatText, FormatJSON, FormatYAML}
}

// Option configures a renderer
type Option func(*options)

type options struct {
	all bool
}

// WithAll includes types produced only as dependencies
func WithAll(all bool) Option {
	return func(o *options) {
		o.all = all
	}
}

// New returns the renderer for format
func New(format Format, opts ...Option) (Renderer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch Format(strings.ToLower(string(format))) {
	case FormatXML:
		return &XMLRenderer{all: o.all}, nil
	case FormatHTML:
		return &HTMLRenderer{all: o.all}, nil
	case FormatText:
		return &TextRenderer{all: o.all}, nil
	case FormatJSON:
		return &StructuredRenderer{format: FormatJSON, all: o.all}, nil
	case FormatYAML:
		return &StructuredRenderer{format: FormatYAML, all: o.all}, nil
	}
	return nil, fmt.Errorf("unknown output format: %s", format)
}

// typeObjects is one type and its objects, in render order
type typeObjects struct {
	name    string
	objects []*spatial.Object
}

// selected returns the types to render: the explicitly requested ones, or
// every produced type when all is set
func selected(res Result, all bool) ([]typeObjects, error) {
	var out []typeObjects
	for _, name := range res.Types() {
		if !all && !res.Explicit(name) {
			continue
		}
		objs, err := res.Objects(name)
		if err != nil {
			return nil, err
		}
		out = append(out, typeObjects{name: name, objects: objs})
	}
	return out, nil
}

// TagName derives the element name of a type: text_runs becomes text-runs
func TagName(typeName string) string {
	return strings.ReplaceAll(typeName, "_", "-")
}

// ItemName derives the element name of one object of a type: text_runs
// becomes text-run
func ItemName(typeName string) string {
	tag := TagName(typeName)
	switch {
	case strings.HasSuffix(tag, "ies"):
		return strings.TrimSuffix(tag, "ies") + "y"
	case strings.HasSuffix(tag, "ss"):
		return tag
	case strings.HasSuffix(tag, "s"):
		return strings.TrimSuffix(tag, "s")
	}
	return tag + "-item"
}

// contentKey is rendered as element text rather than as an attribute
const contentKey = "content"
