// Package pdf reads PDF files into document events. The file is parsed
// by one of several backends; every backend hands its decoded content
// streams and ToUnicode maps to the content interpreter, so the events are
// the same whichever backend produced them.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pyhub-apps/pdfextract-golang/pkg/content"
	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
)

// Backend names a PDF parsing library
type Backend string

const (
	Ledongthuc Backend = "ledongthuc"
	Dslipak    Backend = "dslipak"
	PDFCPU     Backend = "pdfcpu"
)

// DefaultBackend is used when no backend is configured
const DefaultBackend = Ledongthuc

// Backends lists the supported backends
func Backends() []Backend {
	return []Backend{Ledongthuc, Dslipak, PDFCPU}
}

// ParseBackend validates a backend name
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return DefaultBackend, nil
	}
	for _, b := range Backends() {
		if strings.EqualFold(string(b), name) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown PDF backend %q", name)
}

// pageFunc receives the pages of a document in order
type pageFunc func(content.Page) error

// opener walks the pages of the PDF at path
type opener func(ctx context.Context, path string, logger *slog.Logger, fn pageFunc) error

func (b Backend) opener() (opener, error) {
	switch b {
	case Ledongthuc, "":
		return walkLedongthuc, nil
	case Dslipak:
		return walkDslipak, nil
	case PDFCPU:
		return walkPDFCPU, nil
	}
	return nil, fmt.Errorf("unknown PDF backend %q", string(b))
}

// Option configures a FileSource
type Option func(*FileSource)

// WithBackend selects the parsing library
func WithBackend(b Backend) Option {
	return func(s *FileSource) {
		s.backend = b
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// FileSource is the event source of a PDF file. The file is opened when
// the events are read, not when the source is created.
type FileSource struct {
	path    string
	backend Backend
	logger  *slog.Logger
}

// Open returns the event source of the PDF at path
func Open(path string, opts ...Option) *FileSource {
	s := &FileSource{
		path:    path,
		backend: DefaultBackend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Backend returns the parsing library in use
func (s *FileSource) Backend() Backend {
	return s.backend
}

// ForEach streams the events of every page, front to back
func (s *FileSource) ForEach(ctx context.Context, fn func(event.Event) error) error {
	walk, err := s.backend.opener()
	if err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	logger := s.logger.With("file", s.path, "backend", string(s.backend))
	pages := 0
	err = walk(ctx, s.path, logger, func(p content.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		pages++
		return p.Emit(ctx, logger, fn)
	})
	if err != nil {
		return err
	}

	logger.Debug("document read", "pages", pages)
	return nil
}

// parseFonts builds decoders for the fonts that carry a ToUnicode map
func parseFonts(maps map[string][]byte, logger *slog.Logger) map[string]content.Decoder {
	if len(maps) == 0 {
		return nil
	}
	fonts := make(map[string]content.Decoder, len(maps))
	for name, data := range maps {
		cmap, err := content.ParseToUnicodeCMap(data)
		if err != nil {
			logger.Debug("ignoring unreadable ToUnicode map", "font", name, "error", err)
			continue
		}
		fonts[name] = cmap
	}
	return fonts
}
