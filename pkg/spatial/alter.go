package spatial

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Operation is one of the fixed alter operations
type Operation int

const (
	GrowByOp Operation = iota + 1
	GrowByPercentOp
	ShrinkByOp
	ShrinkByPercentOp
	SetToOp
	SetToPercentOp
	WithOp
)

var operationNames = map[Operation]string{
	GrowByOp:          "grow_by",
	GrowByPercentOp:   "grow_by_percent",
	ShrinkByOp:        "shrink_by",
	ShrinkByPercentOp: "shrink_by_percent",
	SetToOp:           "set_to",
	SetToPercentOp:    "set_to_percent",
	WithOp:            "with",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "operation(" + strconv.Itoa(int(op)) + ")"
}

// ParseOperation maps an operation name such as "grow_by" to its Operation
func ParseOperation(name string) (Operation, bool) {
	for op, n := range operationNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// Transform is the caller-supplied function applied by the with operation
type Transform func(Value) Value

// Op is one operation with its operand
type Op struct {
	Operation Operation
	Operand   Value
	Fn        Transform
}

// GrowBy adds p
func GrowBy(p float64) Op { return Op{Operation: GrowByOp, Operand: Num(p)} }

// GrowByPercent multiplies by 1+p
func GrowByPercent(p float64) Op { return Op{Operation: GrowByPercentOp, Operand: Num(p)} }

// ShrinkBy subtracts p
func ShrinkBy(p float64) Op { return Op{Operation: ShrinkByOp, Operand: Num(p)} }

// ShrinkByPercent multiplies by 1-p
func ShrinkByPercent(p float64) Op { return Op{Operation: ShrinkByPercentOp, Operand: Num(p)} }

// SetTo replaces the value; it is the only operation besides With that
// accepts text attributes.
func SetTo(v Value) Op { return Op{Operation: SetToOp, Operand: v} }

// SetToPercent multiplies by p
func SetToPercent(p float64) Op { return Op{Operation: SetToPercentOp, Operand: Num(p)} }

// With replaces the value with fn(value)
func With(fn Transform) Op { return Op{Operation: WithOp, Fn: fn} }

// Change lists the operations applied to one attribute, in order
type Change struct {
	Attribute string
	Ops       []Op
}

// Schema is an ordered alter schema. Attributes are altered in schema order
// and each operation consumes the result of the previous one.
type Schema []Change

// NewSchema starts an empty schema
func NewSchema() Schema {
	return Schema{}
}

// Attr appends the operations for one attribute
func (s Schema) Attr(name string, ops ...Op) Schema {
	return append(s, Change{Attribute: name, Ops: ops})
}

// Alter applies the schema. The call is atomic: if any operation fails, no
// attribute of o is modified.
func (o *Object) Alter(schema Schema) error {
	staged := make(map[string]Value, len(schema))
	var order []string

	for _, change := range schema {
		v, ok := staged[change.Attribute]
		if !ok {
			v = o.attrs[change.Attribute]
			order = append(order, change.Attribute)
		}
		for _, op := range change.Ops {
			next, err := apply(change.Attribute, v, op)
			if err != nil {
				return err
			}
			v = next
		}
		staged[change.Attribute] = v
	}

	for _, name := range order {
		o.Set(name, staged[name])
	}
	return nil
}

func apply(attr string, v Value, op Op) (Value, error) {
	switch op.Operation {
	case SetToOp:
		return op.Operand, nil
	case WithOp:
		if op.Fn == nil {
			return Value{}, fmt.Errorf("attribute %q: with requires a transform", attr)
		}
		return op.Fn(v), nil
	case GrowByOp, GrowByPercentOp, ShrinkByOp, ShrinkByPercentOp, SetToPercentOp:
		if !v.IsNumber() {
			return Value{}, &TypeMismatchError{Attribute: attr, Operation: op.Operation, Kind: v.Kind()}
		}
		if !op.Operand.IsNumber() {
			return Value{}, &TypeMismatchError{Attribute: attr, Operation: op.Operation, Kind: op.Operand.Kind()}
		}
	default:
		return Value{}, &UnknownOperationError{Attribute: attr, Operation: op.Operation.String()}
	}

	x, p := v.num, op.Operand.num
	switch op.Operation {
	case GrowByOp:
		x += p
	case GrowByPercentOp:
		x *= 1 + p
	case ShrinkByOp:
		x -= p
	case ShrinkByPercentOp:
		x *= 1 - p
	case SetToPercentOp:
		x *= p
	}
	return Num(x), nil
}

// ParseSchema reads a schema from a YAML mapping of attribute name to a
// mapping of operation name to operand, keeping document order:
//
//	height:
//	  grow_by_percent: 1
//	y:
//	  shrink_by: 5
//
// Numeric scalars become numbers, everything else text. The with operation
// cannot be expressed in a document.
func ParseSchema(node *yaml.Node) (Schema, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("alter schema must be a mapping, got %s", nodeKind(node))
	}

	schema := NewSchema()
	for i := 0; i+1 < len(node.Content); i += 2 {
		attr := node.Content[i].Value
		opsNode := node.Content[i+1]
		if opsNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("attribute %q: operations must be a mapping, got %s", attr, nodeKind(opsNode))
		}

		var ops []Op
		for j := 0; j+1 < len(opsNode.Content); j += 2 {
			name := opsNode.Content[j].Value
			operation, ok := ParseOperation(name)
			if !ok {
				return nil, &UnknownOperationError{Attribute: attr, Operation: name}
			}
			if operation == WithOp {
				return nil, fmt.Errorf("attribute %q: with requires a transform and cannot be parsed", attr)
			}
			ops = append(ops, Op{Operation: operation, Operand: scalarValue(opsNode.Content[j+1])})
		}
		schema = schema.Attr(attr, ops...)
	}
	return schema, nil
}

// ParseSchemaYAML is ParseSchema over raw YAML bytes
func ParseSchemaYAML(data []byte) (Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse alter schema: %w", err)
	}
	return ParseSchema(&doc)
}

func scalarValue(n *yaml.Node) Value {
	if tag := n.ShortTag(); n.Kind == yaml.ScalarNode && (tag == "!!int" || tag == "!!float") {
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return Num(f)
		}
	}
	return Text(n.Value)
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "mapping"
	}
}
