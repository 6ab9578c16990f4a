package key

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestCodeNames(t *testing.T) {
	for c := Code(0); c < codeCount; c++ {
		name := c.String()
		if name == "" {
			t.Fatalf("Code(%d) has no name", c)
		}
		got, ok := CodeFromName(name)
		if !ok || got != c {
			t.Errorf("CodeFromName(%q) = %v, %v; want %v", name, got, ok, c)
		}
	}
}

func TestEventComparable(t *testing.T) {
	a := NewChar('s', ModControl)
	b := NewChar('s', ModControl)
	if a != b {
		t.Error("identical events should be equal")
	}

	c := b
	c.Kind = KindRelease
	if a == c {
		t.Error("events differing in kind should not be equal")
	}
	if !a.Matches(c) {
		t.Error("Matches should ignore kind")
	}

	d := b
	d.State = StateKeypad
	if a == d {
		t.Error("events differing in state should not be equal")
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewChar('s', ModControl), "Ctrl+s"},
		{New(CodeF4, ModAlt), "Alt+F4"},
		{NewChar(' ', ModNone), "Space"},
		{New(CodeEnter, ModNone), "Enter"},
		{Event{Code: CodeUp, Kind: KindRepeat}, "Up (Repeat)"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	events := []Event{
		NewChar('s', ModControl),
		New(CodeEnter, ModNone),
		{Code: CodeLeft, Modifiers: ModShift | ModAlt, Kind: KindRepeat, State: StateNumLock},
	}
	for _, e := range events {
		got, err := FromFields(e.Fields())
		if err != nil {
			t.Fatalf("FromFields(%v) error = %v", e, err)
		}
		if got != e {
			t.Errorf("FromFields(Fields(%+v)) = %+v", e, got)
		}
	}
}

func TestFromFieldsDefaults(t *testing.T) {
	got, err := FromFields(map[string]any{"code": "Enter"})
	if err != nil {
		t.Fatalf("FromFields() error = %v", err)
	}
	want := Event{Code: CodeEnter, Kind: KindPress}
	if got != want {
		t.Errorf("FromFields() = %+v, want %+v", got, want)
	}

	got, err = FromFields(map[string]any{"code": "Char", "char": "q", "modifiers": float64(2)})
	if err != nil {
		t.Fatalf("FromFields() error = %v", err)
	}
	if got != NewChar('q', ModControl) {
		t.Errorf("FromFields() = %+v", got)
	}
}

func TestFromFieldsErrors(t *testing.T) {
	tests := []map[string]any{
		{},
		{"code": 3},
		{"code": "Nope"},
		{"code": "Char"},
		{"code": "Char", "char": "ab"},
		{"code": "Up", "modifiers": 1.5},
		{"code": "Up", "modifiers": -1},
		{"code": "Up", "kind": "Tap"},
		{"code": "Up", "state": "on"},
	}
	for _, m := range tests {
		if _, err := FromFields(m); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("FromFields(%v) error = %v, want ErrInvalidSpec", m, err)
		}
	}
}

func TestFromValue(t *testing.T) {
	a, err := FromValue("Ctrl+s")
	if err != nil {
		t.Fatalf("FromValue(string) error = %v", err)
	}
	b, err := FromValue(map[string]any{"code": "Char", "char": "s", "modifiers": int64(2)})
	if err != nil {
		t.Fatalf("FromValue(map) error = %v", err)
	}
	if a != b {
		t.Errorf("FromValue forms differ: %+v vs %+v", a, b)
	}
	if _, err := FromValue(42); err == nil {
		t.Error("FromValue(42) expected error")
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want Event
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), NewChar('x', ModNone)},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), New(CodeUp, ModNone)},
		{tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), New(CodeF5, ModNone)},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), New(CodePageDown, ModNone)},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), New(CodeEsc, ModNone)},
		{tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModAlt), NewChar('f', ModAlt)},
	}
	for _, tt := range tests {
		if got := FromTcell(tt.ev); got != tt.want {
			t.Errorf("FromTcell(%s) = %+v, want %+v", tt.ev.Name(), got, tt.want)
		}
	}
}

func TestToTcellRoundTrip(t *testing.T) {
	events := []Event{
		New(CodeHome, ModNone),
		New(CodeF12, ModNone),
		NewChar('z', ModNone),
		New(CodeDelete, ModNone),
	}
	for _, e := range events {
		if got := FromTcell(ToTcell(e)); got != e {
			t.Errorf("FromTcell(ToTcell(%v)) = %v", e, got)
		}
	}
}
