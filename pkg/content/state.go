package content

import "math"

// GraphicsState is the part of the PDF graphics state that positions text
type GraphicsState struct {
	CTM            Matrix  // Current Transformation Matrix
	TextMatrix     Matrix  // Text matrix
	TextLineMatrix Matrix  // Text line matrix
	CharSpace      float64 // Character spacing
	WordSpace      float64 // Word spacing
	HScale         float64 // Horizontal scaling, percent
	Leading        float64 // Text leading
	FontName       string  // Current font resource name
	FontSize       float64 // Current font size
	TextRise       float64 // Text rise
	RenderMode     int     // Text rendering mode

	LineWidth float64
}

// NewGraphicsState creates a new graphics state with defaults
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:            IdentityMatrix(),
		TextMatrix:     IdentityMatrix(),
		TextLineMatrix: IdentityMatrix(),
		HScale:         100,
		LineWidth:      1,
	}
}

// Clone creates a copy of the graphics state
func (gs *GraphicsState) Clone() *GraphicsState {
	c := *gs
	return &c
}

// Matrix represents a 2D transformation matrix [a b c d e f]
type Matrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix returns an identity matrix
func IdentityMatrix() Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, E: 0, F: 0}
}

// Multiply returns m × other: m applied first, then other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.C,
		B: m.A*other.B + m.B*other.D,
		C: m.C*other.A + m.D*other.C,
		D: m.C*other.B + m.D*other.D,
		E: m.E*other.A + m.F*other.C + other.E,
		F: m.E*other.B + m.F*other.D + other.F,
	}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(x, y float64) (float64, float64) {
	newX := m.A*x + m.C*y + m.E
	newY := m.B*x + m.D*y + m.F
	return newX, newY
}

// XScale returns the length of a unit x vector after transformation
func (m Matrix) XScale() float64 {
	return math.Hypot(m.A, m.B)
}

// YScale returns the length of a unit y vector after transformation
func (m Matrix) YScale() float64 {
	return math.Hypot(m.C, m.D)
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, E: tx, F: ty}
}

// matrixFrom reads six numeric operands
func matrixFrom(operands []any) (Matrix, bool) {
	if len(operands) != 6 {
		return Matrix{}, false
	}
	return Matrix{
		A: toFloat(operands[0]),
		B: toFloat(operands[1]),
		C: toFloat(operands[2]),
		D: toFloat(operands[3]),
		E: toFloat(operands[4]),
		F: toFloat(operands[5]),
	}, true
}

// StateStack manages graphics state stack for save/restore operations
type StateStack struct {
	states []*GraphicsState
}

// NewStateStack creates a new state stack
func NewStateStack() *StateStack {
	return &StateStack{
		states: []*GraphicsState{NewGraphicsState()},
	}
}

// Current returns the current graphics state
func (s *StateStack) Current() *GraphicsState {
	return s.states[len(s.states)-1]
}

// Save saves the current graphics state
func (s *StateStack) Save() {
	s.states = append(s.states, s.Current().Clone())
}

// Restore restores the previous graphics state; an unbalanced Q is ignored
func (s *StateStack) Restore() {
	if len(s.states) > 1 {
		s.states = s.states[:len(s.states)-1]
	}
}

// Depth returns the number of saved states
func (s *StateStack) Depth() int {
	return len(s.states) - 1
}
