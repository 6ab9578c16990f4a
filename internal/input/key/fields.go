package key

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Field names of the table form of an Event.
const (
	FieldCode      = "code"
	FieldChar      = "char"
	FieldModifiers = "modifiers"
	FieldKind      = "kind"
	FieldState     = "state"
)

// Fields returns the table form of e as seen by plugins and settings files:
// {code, char, modifiers, kind, state}. char is present only for CodeChar.
func (e Event) Fields() map[string]any {
	m := map[string]any{
		FieldCode:      e.Code.String(),
		FieldModifiers: int64(e.Modifiers),
		FieldKind:      e.Kind.String(),
		FieldState:     int64(e.State),
	}
	if e.IsChar() {
		m[FieldChar] = string(e.Char)
	}
	return m
}

// FromFields builds an Event from its table form. code is required, char is
// required when code is "Char". Missing modifiers and state default to 0 and a
// missing kind defaults to Press.
func FromFields(m map[string]any) (Event, error) {
	var e Event

	name, ok := m[FieldCode].(string)
	if !ok {
		return Event{}, fmt.Errorf("%w: %q must be a string", ErrInvalidSpec, FieldCode)
	}
	code, ok := CodeFromName(name)
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown key code %q", ErrInvalidSpec, name)
	}
	e.Code = code

	if code == CodeChar {
		s, ok := m[FieldChar].(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return Event{}, fmt.Errorf("%w: %q must be a single character", ErrInvalidSpec, FieldChar)
		}
		e.Char, _ = utf8.DecodeRuneInString(s)
	}

	if v, present := m[FieldModifiers]; present && v != nil {
		n, ok := toUint8(v)
		if !ok {
			return Event{}, fmt.Errorf("%w: %q must be a small integer", ErrInvalidSpec, FieldModifiers)
		}
		e.Modifiers = Modifier(n)
	}

	if v, present := m[FieldKind]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return Event{}, fmt.Errorf("%w: %q must be a string", ErrInvalidSpec, FieldKind)
		}
		kind, ok := KindFromName(s)
		if !ok {
			return Event{}, fmt.Errorf("%w: unknown key kind %q", ErrInvalidSpec, s)
		}
		e.Kind = kind
	}

	if v, present := m[FieldState]; present && v != nil {
		n, ok := toUint8(v)
		if !ok {
			return Event{}, fmt.Errorf("%w: %q must be a small integer", ErrInvalidSpec, FieldState)
		}
		e.State = State(n)
	}

	return e, nil
}

// FromValue accepts either a specification string or a table form.
// Settings loaders use it for values decoded from TOML, YAML or JSON.
func FromValue(v any) (Event, error) {
	switch x := v.(type) {
	case string:
		return Parse(x)
	case map[string]any:
		return FromFields(x)
	case Event:
		return x, nil
	default:
		return Event{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidSpec, v)
	}
}

func toUint8(v any) (uint8, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxUint8 {
			return 0, false
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		n = int64(x)
	default:
		return 0, false
	}
	if n < 0 || n > math.MaxUint8 {
		return 0, false
	}
	return uint8(n), true
}
