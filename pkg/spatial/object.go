// Package spatial provides the attribute container produced for every
// spatial type, its mutation DSL, and the per-run object store.
package spatial

import (
	"strconv"
)

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindNone Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// Value is an attribute value: either a number or a piece of text
type Value struct {
	kind Kind
	num  float64
	text string
}

// Num returns a numeric value
func Num(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns the variant tag
func (v Value) Kind() Kind {
	return v.kind
}

// IsNumber reports whether the value supports arithmetic operations
func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// Float returns the numeric payload, or 0 for text values
func (v Value) Float() float64 {
	return v.num
}

// String returns the text payload, or the formatted number
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Object is one spatial object: an ordered mapping from attribute name to
// Value. Attribute order is the order of first assignment.
type Object struct {
	keys  []string
	attrs map[string]Value
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{attrs: make(map[string]Value)}
}

// Set assigns an attribute, appending the name on first assignment
func (o *Object) Set(name string, v Value) *Object {
	if o.attrs == nil {
		o.attrs = make(map[string]Value)
	}
	if _, ok := o.attrs[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.attrs[name] = v
	return o
}

// SetNum assigns a numeric attribute
func (o *Object) SetNum(name string, f float64) *Object {
	return o.Set(name, Num(f))
}

// SetText assigns a text attribute
func (o *Object) SetText(name, s string) *Object {
	return o.Set(name, Text(s))
}

// Get returns an attribute and whether it is present
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// Num returns a numeric attribute, or 0 when absent or text
func (o *Object) Num(name string) float64 {
	return o.attrs[name].num
}

// Text returns an attribute as text; numbers are formatted
func (o *Object) Text(name string) string {
	return o.attrs[name].String()
}

// Has reports whether the attribute is present
func (o *Object) Has(name string) bool {
	_, ok := o.attrs[name]
	return ok
}

// Keys returns attribute names in assignment order
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of attributes
func (o *Object) Len() int {
	return len(o.keys)
}

// Clone returns a deep copy
func (o *Object) Clone() *Object {
	c := &Object{
		keys:  make([]string, len(o.keys)),
		attrs: make(map[string]Value, len(o.attrs)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.attrs {
		c.attrs[k] = v
	}
	return c
}

// Map returns the attributes as plain Go values (float64 or string), used
// by the structured renderers.
func (o *Object) Map() map[string]any {
	m := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		v := o.attrs[k]
		if v.kind == KindNumber {
			m[k] = v.num
		} else {
			m[k] = v.text
		}
	}
	return m
}

// BoundingBox is the x/y/width/height rectangle carried by positioned objects
type BoundingBox struct {
	X, Y, Width, Height float64
}

// Bounds reads the x, y, width and height attributes
func (o *Object) Bounds() BoundingBox {
	return BoundingBox{
		X:      o.Num("x"),
		Y:      o.Num("y"),
		Width:  o.Num("width"),
		Height: o.Num("height"),
	}
}

// SetBounds assigns the x, y, width and height attributes in that order
func (o *Object) SetBounds(b BoundingBox) *Object {
	return o.SetNum("x", b.X).SetNum("y", b.Y).SetNum("width", b.Width).SetNum("height", b.Height)
}

// Right returns the right edge
func (b BoundingBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge
func (b BoundingBox) Top() float64 {
	return b.Y + b.Height
}

// CenterX returns the horizontal center
func (b BoundingBox) CenterX() float64 {
	return b.X + b.Width/2
}

// CenterY returns the vertical center
func (b BoundingBox) CenterY() float64 {
	return b.Y + b.Height/2
}

// Contains checks if a point is within the bounding box
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X && x <= b.Right() && y >= b.Y && y <= b.Top()
}
