// Package content interprets PDF content streams and reports every
// operator as a document event.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
)

// avgGlyphWidth is the glyph advance, in text space units per unit of font
// size, used in place of font metrics
const avgGlyphWidth = 0.5

// spaceAdjustment is the TJ adjustment, in thousandths of a text space
// unit, beyond which a word break is assumed
const spaceAdjustment = 250

// Interpreter runs the content streams of one page. Text positions are
// tracked through the CTM and text matrices, so shown text carries its
// page-space origin.
type Interpreter struct {
	page       int
	fonts      map[string]Decoder
	stateStack *StateStack
	logger     *slog.Logger
}

// NewInterpreter creates an interpreter for page. fonts maps font resource
// names to decoders; unknown fonts decode as WinAnsi.
func NewInterpreter(page int, fonts map[string]Decoder, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		page:       page,
		fonts:      fonts,
		stateStack: NewStateStack(),
		logger:     logger,
	}
}

// Run interprets one decoded content stream, calling emit for each
// operator with a known event name. The graphics state carries over
// between calls, so a page with several content streams is run stream by
// stream on one interpreter.
func (in *Interpreter) Run(ctx context.Context, data []byte, emit func(event.Event) error) error {
	lexer := NewLexer(data)
	var operands []any
	skipped := 0

	for {
		tok, err := lexer.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			operands = nil
			continue
		}

		if tok.Type == TokenOperand {
			operands = append(operands, tok.Value)
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		op := tok.Value.(string)
		ev, ok := in.apply(op, operands)
		operands = nil
		if !ok {
			continue
		}
		if err := emit(ev); err != nil {
			return err
		}
	}

	if skipped > 0 {
		in.logger.Debug("skipped malformed content tokens", "page", in.page, "count", skipped)
	}
	return nil
}

// apply updates the graphics state for op and builds its event
func (in *Interpreter) apply(op string, operands []any) (event.Event, bool) {
	name, known := event.ForOperator(op)
	if !known {
		return event.Event{}, false
	}

	ev := event.Event{
		Name:     name,
		Operator: op,
		Page:     in.page,
		Args:     operands,
	}
	state := in.stateStack.Current()

	switch op {
	// Graphics state operators
	case "q":
		in.stateStack.Save()

	case "Q":
		in.stateStack.Restore()

	case "cm":
		if m, ok := matrixFrom(operands); ok {
			state.CTM = m.Multiply(state.CTM)
		}

	case "w":
		if len(operands) == 1 {
			state.LineWidth = toFloat(operands[0])
		}

	// Text state operators
	case "BT":
		state.TextMatrix = IdentityMatrix()
		state.TextLineMatrix = IdentityMatrix()

	case "Tc":
		if len(operands) == 1 {
			state.CharSpace = toFloat(operands[0])
		}

	case "Tw":
		if len(operands) == 1 {
			state.WordSpace = toFloat(operands[0])
		}

	case "Tz":
		if len(operands) == 1 {
			state.HScale = toFloat(operands[0])
		}

	case "TL":
		if len(operands) == 1 {
			state.Leading = toFloat(operands[0])
		}

	case "Ts":
		if len(operands) == 1 {
			state.TextRise = toFloat(operands[0])
		}

	case "Tr":
		if len(operands) == 1 {
			state.RenderMode = int(toFloat(operands[0]))
		}

	case "Tf":
		if len(operands) == 2 {
			state.FontName = toString(operands[0])
			state.FontSize = toFloat(operands[1])
		}
		ev.Font = state.FontName
		ev.FontSize = state.FontSize

	// Text positioning operators
	case "Td":
		if len(operands) == 2 {
			in.moveLine(state, toFloat(operands[0]), toFloat(operands[1]))
		}

	case "TD":
		if len(operands) == 2 {
			ty := toFloat(operands[1])
			state.Leading = -ty
			in.moveLine(state, toFloat(operands[0]), ty)
		}

	case "Tm":
		if m, ok := matrixFrom(operands); ok {
			state.TextMatrix = m
			state.TextLineMatrix = m
		}

	case "T*":
		in.moveLine(state, 0, -state.Leading)

	// Text showing operators
	case "Tj":
		if len(operands) == 1 {
			in.showText(&ev, state, []any{operands[0]})
		}

	case "TJ":
		if len(operands) == 1 {
			if array, ok := operands[0].([]any); ok {
				in.showText(&ev, state, array)
			}
		}

	case "'":
		in.moveLine(state, 0, -state.Leading)
		if len(operands) == 1 {
			in.showText(&ev, state, []any{operands[0]})
		}

	case "\"":
		if len(operands) == 3 {
			state.WordSpace = toFloat(operands[0])
			state.CharSpace = toFloat(operands[1])
			in.moveLine(state, 0, -state.Leading)
			in.showText(&ev, state, []any{operands[2]})
		}
	}

	return ev, true
}

// moveLine starts a new line offset from the current line start
func (in *Interpreter) moveLine(state *GraphicsState, tx, ty float64) {
	state.TextLineMatrix = Translate(tx, ty).Multiply(state.TextLineMatrix)
	state.TextMatrix = state.TextLineMatrix
}

// showText decodes the strings of a text-show operation, fills the text
// fields of ev and advances the text matrix. Numbers in items are TJ
// position adjustments.
func (in *Interpreter) showText(ev *event.Event, state *GraphicsState, items []any) {
	trm := Matrix{A: 1, D: 1, F: state.TextRise}.Multiply(state.TextMatrix).Multiply(state.CTM)
	x0, y0 := trm.E, trm.F

	var text strings.Builder
	for _, item := range items {
		switch v := item.(type) {
		case []byte:
			decoded := in.decode(state.FontName, v)
			text.WriteString(decoded)
			in.advance(state, in.textAdvance(state, decoded))
		case string:
			text.WriteString(v)
			in.advance(state, in.textAdvance(state, v))
		case float64:
			if v < -spaceAdjustment && text.Len() > 0 && !strings.HasSuffix(text.String(), " ") {
				text.WriteString(" ")
			}
			in.advance(state, -v/1000*state.FontSize*state.HScale/100)
		}
	}

	end := Matrix{A: 1, D: 1, F: state.TextRise}.Multiply(state.TextMatrix).Multiply(state.CTM)
	x1, y1 := end.E, end.F

	ev.Text = text.String()
	ev.Font = state.FontName
	ev.FontSize = state.FontSize * trm.YScale()
	ev.X = x0
	ev.Y = y0
	ev.Width = distance(x0, y0, x1, y1)
}

// textAdvance estimates the horizontal displacement of text in text space
func (in *Interpreter) textAdvance(state *GraphicsState, text string) float64 {
	var tx float64
	for _, r := range text {
		tx += avgGlyphWidth*state.FontSize + state.CharSpace
		if r == ' ' {
			tx += state.WordSpace
		}
	}
	return tx * state.HScale / 100
}

func (in *Interpreter) advance(state *GraphicsState, tx float64) {
	state.TextMatrix = Translate(tx, 0).Multiply(state.TextMatrix)
}

func (in *Interpreter) decode(font string, raw []byte) string {
	if d, ok := in.fonts[font]; ok && d != nil {
		return d.Decode(raw)
	}
	return WinAnsi.Decode(raw)
}

func distance(x0, y0, x1, y1 float64) float64 {
	return Matrix{A: x1 - x0, B: y1 - y0}.XScale()
}

// Helper functions

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return 0
	}
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
