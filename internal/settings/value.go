package settings

import (
	"fmt"
	"math"

	"github.com/dshills/hexpatch/internal/input/key"
)

// ValueKind discriminates Value.
type ValueKind uint8

const (
	// KindAbsent is the zero Value. Storing it removes a custom entry.
	KindAbsent ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindStyle
	KindKeyBinding
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindAbsent:
		return "Absent"
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindStyle:
		return "Style"
	case KindKeyBinding:
		return "KeyBinding"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a custom setting value. Values are comparable; two values are
// equal when they have the same kind and payload.
type Value struct {
	kind  ValueKind
	str   string
	num   int64
	flt   float64
	flag  bool
	style Style
	key   key.Event
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer returns an integer value.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// StyleValue returns a style value.
func StyleValue(s Style) Value { return Value{kind: KindStyle, style: s} }

// KeyBinding returns a key binding value.
func KeyBinding(e key.Event) Value { return Value{kind: KindKeyBinding, key: e} }

// Kind returns the discriminant.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether v is the absent value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsString returns the payload of a string value.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInteger returns the payload of an integer value.
func (v Value) AsInteger() (int64, bool) { return v.num, v.kind == KindInteger }

// AsFloat returns the payload of a float value.
func (v Value) AsFloat() (float64, bool) { return v.flt, v.kind == KindFloat }

// AsBoolean returns the payload of a boolean value.
func (v Value) AsBoolean() (bool, bool) { return v.flag, v.kind == KindBoolean }

// AsStyle returns the payload of a style value.
func (v Value) AsStyle() (Style, bool) { return v.style, v.kind == KindStyle }

// AsKeyBinding returns the payload of a key binding value.
func (v Value) AsKeyBinding() (key.Event, bool) { return v.key, v.kind == KindKeyBinding }

// Any returns the plain form of v: nil, string, int64, float64, bool, or a
// table (map[string]any) for styles and key bindings.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindBoolean:
		return v.flag
	case KindStyle:
		return v.style.Fields()
	case KindKeyBinding:
		return v.key.Fields()
	default:
		return nil
	}
}

// String returns a readable form of v.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindStyle:
		return fmt.Sprintf("{fg=%s bg=%s}", v.style.Fg, v.style.Bg)
	case KindKeyBinding:
		return v.key.String()
	default:
		return fmt.Sprint(v.Any())
	}
}

// ValueOf converts a plain value into a Value. Tables carrying a "code"
// field are key bindings; other tables are styles. Integral floats stay
// floats; callers that cannot distinguish integers from floats use
// NumberValue.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Boolean(t), nil
	case int:
		return Integer(int64(t)), nil
	case int64:
		return Integer(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: integer %d overflows", ErrInvalidValue, t)
		}
		return Integer(int64(t)), nil
	case float64:
		return Float(t), nil
	case map[string]any:
		if _, ok := t[key.FieldCode]; ok {
			e, err := key.FromFields(t)
			if err != nil {
				return Value{}, err
			}
			return KeyBinding(e), nil
		}
		st, err := ParseStyle(t)
		if err != nil {
			return Value{}, err
		}
		return StyleValue(st), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, x)
	}
}

// NumberValue converts a number from a runtime with a single number type:
// integral values in int64 range become Integer, everything else Float.
func NumberValue(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Integer(int64(f))
	}
	return Float(f)
}
