// Package event defines the low-level document events streamed by a
// document source and consumed by the receiver.
package event

import (
	"context"
	"sort"
)

// Event names. The vocabulary follows the content-stream operators, one
// name per operator, plus page boundaries.
const (
	BeginPage = "begin_page"
	EndPage   = "end_page"

	SaveGraphicsState    = "save_graphics_state"
	RestoreGraphicsState = "restore_graphics_state"
	ConcatenateMatrix    = "concatenate_matrix"
	SetLineWidth         = "set_line_width"

	BeginNewSubpath = "begin_new_subpath"
	AppendLine      = "append_line"
	AppendCurve     = "append_curved_segment"
	AppendRectangle = "append_rectangle"
	ClosePath       = "close_subpath"
	StrokePath      = "stroke_path"
	FillPath        = "fill_path"
	FillStrokePath  = "fill_stroke"
	EndPath         = "end_path"

	SetGrayFill   = "set_gray_for_nonstroking"
	SetGrayStroke = "set_gray_for_stroking"
	SetRGBFill    = "set_rgb_color_for_nonstroking"
	SetRGBStroke  = "set_rgb_color_for_stroking"

	BeginText                  = "begin_text_object"
	EndText                    = "end_text_object"
	SetCharacterSpacing        = "set_character_spacing"
	SetWordSpacing             = "set_word_spacing"
	SetHorizontalScaling       = "set_horizontal_text_scaling"
	SetTextLeading             = "set_text_leading"
	SetTextRise                = "set_text_rise"
	SetTextRenderingMode       = "set_text_rendering_mode"
	SetTextFontAndSize         = "set_text_font_and_size"
	MoveTextPosition           = "move_text_position"
	MoveTextPositionSetLeading = "move_text_position_and_set_leading"
	SetTextMatrix              = "set_text_matrix_and_text_line_matrix"
	MoveToNextLine             = "move_to_start_of_next_line"

	ShowText                = "show_text"
	ShowTextWithPositioning = "show_text_with_positioning"
	MoveToNextLineShowText  = "move_to_next_line_and_show_text"
	SetSpacingNextLineShow  = "set_spacing_next_line_show_text"

	InvokeXObject        = "invoke_xobject"
	BeginInlineImage     = "begin_inline_image"
	BeginInlineImageData = "begin_inline_image_data"
	EndInlineImage       = "end_inline_image"
	BeginMarkedContent   = "begin_marked_content"
	EndMarkedContent     = "end_marked_content"
)

var operators = map[string]string{
	"q":   SaveGraphicsState,
	"Q":   RestoreGraphicsState,
	"cm":  ConcatenateMatrix,
	"w":   SetLineWidth,
	"m":   BeginNewSubpath,
	"l":   AppendLine,
	"c":   AppendCurve,
	"v":   AppendCurve,
	"y":   AppendCurve,
	"re":  AppendRectangle,
	"h":   ClosePath,
	"S":   StrokePath,
	"s":   StrokePath,
	"f":   FillPath,
	"F":   FillPath,
	"f*":  FillPath,
	"B":   FillStrokePath,
	"B*":  FillStrokePath,
	"b":   FillStrokePath,
	"b*":  FillStrokePath,
	"n":   EndPath,
	"g":   SetGrayFill,
	"G":   SetGrayStroke,
	"rg":  SetRGBFill,
	"RG":  SetRGBStroke,
	"BT":  BeginText,
	"ET":  EndText,
	"Tc":  SetCharacterSpacing,
	"Tw":  SetWordSpacing,
	"Tz":  SetHorizontalScaling,
	"TL":  SetTextLeading,
	"Ts":  SetTextRise,
	"Tr":  SetTextRenderingMode,
	"Tf":  SetTextFontAndSize,
	"Td":  MoveTextPosition,
	"TD":  MoveTextPositionSetLeading,
	"Tm":  SetTextMatrix,
	"T*":  MoveToNextLine,
	"Tj":  ShowText,
	"TJ":  ShowTextWithPositioning,
	"'":   MoveToNextLineShowText,
	"\"":  SetSpacingNextLineShow,
	"Do":  InvokeXObject,
	"BI":  BeginInlineImage,
	"ID":  BeginInlineImageData,
	"EI":  EndInlineImage,
	"BMC": BeginMarkedContent,
	"BDC": BeginMarkedContent,
	"EMC": EndMarkedContent,
}

var known = func() map[string]bool {
	m := map[string]bool{BeginPage: true, EndPage: true}
	for _, name := range operators {
		m[name] = true
	}
	return m
}()

// ForOperator returns the event name for a content-stream operator
func ForOperator(op string) (string, bool) {
	name, ok := operators[op]
	return name, ok
}

// Known reports whether a source can emit the named event
func Known(name string) bool {
	return known[name]
}

// Names returns every known event name, sorted
func Names() []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTextShow reports whether the event shows text
func IsTextShow(name string) bool {
	switch name {
	case ShowText, ShowTextWithPositioning, MoveToNextLineShowText, SetSpacingNextLineShow:
		return true
	}
	return false
}

// Event is one decoded content-stream operation. Args holds the raw
// operands: float64 for numbers, string for names, []byte for strings and
// []any for arrays. Text-show events also carry the decoded text and its
// position in page space.
type Event struct {
	Name     string
	Operator string
	Page     int
	Args     []any

	Text     string
	Font     string
	FontSize float64
	X        float64
	Y        float64
	Width    float64

	// PageWidth and PageHeight are set on begin_page and end_page
	PageWidth  float64
	PageHeight float64
}

// Source is a forward-only stream of document events. ForEach calls fn once
// per event, front to back, and stops at the first error fn returns.
type Source interface {
	ForEach(ctx context.Context, fn func(Event) error) error
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, fn func(Event) error) error

// ForEach calls f
func (f SourceFunc) ForEach(ctx context.Context, fn func(Event) error) error {
	return f(ctx, fn)
}

// Slice is an in-memory Source, mostly useful in tests
type Slice []Event

// ForEach streams the events in order
func (s Slice) ForEach(ctx context.Context, fn func(Event) error) error {
	for _, ev := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}
