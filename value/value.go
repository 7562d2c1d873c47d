package value

import (
	"strconv"
	"strings"
)

// Type represents the variant of a Value.
type Type int

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeArray
	TypeObject
	TypeMissing // result of a failed dot-path traversal; never produced by the parser
)

var typeNames = map[Type]string{
	TypeNull: "null", TypeBool: "bool", TypeInt: "int", TypeFloat: "float",
	TypeString: "string", TypeArray: "array", TypeObject: "object", TypeMissing: "missing",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Value is a dynamically-typed JSON value. Integer and floating-point
// literals stay distinct: parsing "1" yields TypeInt, "1.0" yields TypeFloat.
type Value struct {
	Type  Type
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Arr   []Value
	Obj   *Object
}

// Null returns a null value.
func Null() Value {
	return Value{Type: TypeNull}
}

// Missing returns the sentinel produced when a dot-path cannot be resolved.
func Missing() Value {
	return Value{Type: TypeMissing}
}

// BoolVal creates a boolean value.
func BoolVal(v bool) Value {
	return Value{Type: TypeBool, Bool: v}
}

// IntVal creates an integer value.
func IntVal(v int64) Value {
	return Value{Type: TypeInt, Int: v}
}

// FloatVal creates a float value.
func FloatVal(v float64) Value {
	return Value{Type: TypeFloat, Float: v}
}

// StrVal creates a string value.
func StrVal(v string) Value {
	return Value{Type: TypeString, Str: v}
}

// ArrVal creates an array value.
func ArrVal(elems []Value) Value {
	return Value{Type: TypeArray, Arr: elems}
}

// ObjVal creates an object value.
func ObjVal(o *Object) Value {
	return Value{Type: TypeObject, Obj: o}
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// IsMissing returns true if the value is the traversal-miss sentinel.
func (v Value) IsMissing() bool {
	return v.Type == TypeMissing
}

// AsFloat attempts to coerce to float64 for arithmetic.
func (v Value) AsFloat() (float64, bool) {
	switch v.Type {
	case TypeInt:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Equal reports structural equality with no type coercion: IntVal(1) is not
// equal to FloatVal(1.0). Missing equals only Missing.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNull, TypeMissing:
		return true
	case TypeBool:
		return v.Bool == other.Bool
	case TypeInt:
		return v.Int == other.Int
	case TypeFloat:
		return v.Float == other.Float
	case TypeString:
		return v.Str == other.Str
	case TypeArray:
		if len(v.Arr) != len(other.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(other.Arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if v.Obj.Len() != other.Obj.Len() {
			return false
		}
		for _, f := range v.Obj.Fields() {
			ov, ok := other.Obj.Get(f.Key)
			if !ok || !f.Val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns the canonical JSON encoding of the value. Object key order
// is insertion order, so the encoding is deterministic for a given tree.
// Missing renders as null; callers that must distinguish check the Type.
func (v Value) String() string {
	var sb strings.Builder
	v.appendJSON(&sb)
	return sb.String()
}

func (v Value) appendJSON(sb *strings.Builder) {
	switch v.Type {
	case TypeNull, TypeMissing:
		sb.WriteString("null")
	case TypeBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case TypeInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case TypeFloat:
		sb.WriteString(strconv.FormatFloat(v.Float, 'f', -1, 64))
	case TypeString:
		appendQuoted(sb, v.Str)
	case TypeArray:
		sb.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.appendJSON(sb)
		}
		sb.WriteByte(']')
	case TypeObject:
		sb.WriteByte('{')
		for i, f := range v.Obj.Fields() {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, f.Key)
			sb.WriteByte(':')
			f.Val.appendJSON(sb)
		}
		sb.WriteByte('}')
	}
}

func appendQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
