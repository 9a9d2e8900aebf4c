package lang

//go:generate go tool stringer --linecomment --type Type --output type_string.go

import (
	"strconv"
	"strings"
)

// Type identifies the shape of a [Value].
type Type int

const (
	TypeNull     Type = iota // null
	TypeNumber               // number
	TypeBool                 // bool
	TypeString               // string
	TypeSequence             // sequence
	TypeMapping              // mapping
)

// Value is a node of a decoded scene document.
//
// Only the member selected by Type is meaningful. Mappings keep the order in
// which their keys were declared.
type Value struct {
	Type     Type
	Number   float64
	Bool     bool
	Text     string
	Sequence []*Value
	Mapping  []*Field
}

// Field is a single key of a mapping [Value].
type Field struct {
	Key   string
	Value *Value
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{Type: TypeNull} }

// NewNumber returns a number value.
func NewNumber(n float64) *Value { return &Value{Type: TypeNumber, Number: n} }

// NewBool returns a boolean value.
func NewBool(b bool) *Value { return &Value{Type: TypeBool, Bool: b} }

// NewString returns a string value. Strings in a scene are references.
func NewString(s string) *Value { return &Value{Type: TypeString, Text: s} }

// NewSequence returns a sequence of the given values.
func NewSequence(items ...*Value) *Value {
	return &Value{Type: TypeSequence, Sequence: items}
}

// NewVector returns a sequence of numbers.
func NewVector(n ...float64) *Value {
	items := make([]*Value, len(n))
	for i := range n {
		items[i] = NewNumber(n[i])
	}

	return NewSequence(items...)
}

// NewMapping returns a mapping of the given fields in order.
func NewMapping(fields ...*Field) *Value {
	return &Value{Type: TypeMapping, Mapping: fields}
}

// NewField returns a mapping field.
func NewField(key string, value *Value) *Field {
	return &Field{Key: key, Value: value}
}

// Get returns the value of the first field named key.
// It returns false if v is not a mapping or has no such field.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Type != TypeMapping {
		return nil, false
	}

	for _, f := range v.Mapping {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

// Has reports whether v is a mapping with a field named key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)

	return ok
}

// String returns a compact single-line rendering of v.
func (v *Value) String() string {
	var sb strings.Builder

	v.write(&sb)

	return sb.String()
}

func (v *Value) write(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("null")

		return
	}

	switch v.Type {
	case TypeNumber:
		sb.WriteString(strconv.FormatFloat(v.Number, 'g', -1, 64))
	case TypeBool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case TypeString:
		sb.WriteString(v.Text)
	case TypeSequence:
		sb.WriteByte('[')
		for i, item := range v.Sequence {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	case TypeMapping:
		sb.WriteByte('{')
		for i, f := range v.Mapping {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Key)
			sb.WriteString(": ")
			f.Value.write(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("null")
	}
}
