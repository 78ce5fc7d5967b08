package content

import (
	"context"
	"log/slog"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
)

// Page is the raw material of one page: its size and decoded content
// streams, in drawing order
type Page struct {
	Number   int
	Width    float64
	Height   float64
	Contents [][]byte
	Fonts    map[string]Decoder
}

// Emit streams the events of one page to fn: begin_page, one event per
// content operator, end_page
func (p Page) Emit(ctx context.Context, logger *slog.Logger, fn func(event.Event) error) error {
	if err := fn(event.Event{
		Name:       event.BeginPage,
		Page:       p.Number,
		PageWidth:  p.Width,
		PageHeight: p.Height,
	}); err != nil {
		return err
	}

	in := NewInterpreter(p.Number, p.Fonts, logger)
	for _, data := range p.Contents {
		if err := in.Run(ctx, data, fn); err != nil {
			return err
		}
	}

	return fn(event.Event{
		Name:       event.EndPage,
		Page:       p.Number,
		PageWidth:  p.Width,
		PageHeight: p.Height,
	})
}

// StreamSource is an event source over in-memory pages
type StreamSource struct {
	Pages  []Page
	Logger *slog.Logger
}

// ForEach streams every page in order
func (s StreamSource) ForEach(ctx context.Context, fn func(event.Event) error) error {
	for _, p := range s.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Emit(ctx, s.Logger, fn); err != nil {
			return err
		}
	}
	return nil
}
