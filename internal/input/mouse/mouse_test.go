package mouse

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hexpatch/internal/input/key"
)

func TestTranslatorSequence(t *testing.T) {
	tr := NewTranslator()

	steps := []struct {
		x, y    int
		buttons tcell.ButtonMask
		want    Event
	}{
		{1, 1, tcell.ButtonNone, Event{Kind: KindMoved, Column: 1, Row: 1}},
		{2, 1, tcell.Button1, Event{Kind: KindDown, Button: ButtonLeft, Column: 2, Row: 1}},
		{3, 1, tcell.Button1, Event{Kind: KindDrag, Button: ButtonLeft, Column: 3, Row: 1}},
		{3, 2, tcell.ButtonNone, Event{Kind: KindUp, Button: ButtonLeft, Column: 3, Row: 2}},
		{3, 2, tcell.ButtonNone, Event{Kind: KindMoved, Column: 3, Row: 2}},
		{0, 0, tcell.Button2, Event{Kind: KindDown, Button: ButtonRight}},
		{0, 0, tcell.Button3, Event{Kind: KindDown, Button: ButtonMiddle}},
	}

	for i, s := range steps {
		got := tr.Translate(tcell.NewEventMouse(s.x, s.y, s.buttons, tcell.ModNone))
		if got != s.want {
			t.Errorf("step %d: Translate() = %+v, want %+v", i, got, s.want)
		}
	}
}

func TestTranslatorScroll(t *testing.T) {
	tests := []struct {
		mask tcell.ButtonMask
		want Kind
	}{
		{tcell.WheelUp, KindScrollUp},
		{tcell.WheelDown, KindScrollDown},
		{tcell.WheelLeft, KindScrollLeft},
		{tcell.WheelRight, KindScrollRight},
	}
	tr := NewTranslator()
	for _, tt := range tests {
		got := tr.Translate(tcell.NewEventMouse(5, 6, tt.mask, tcell.ModCtrl))
		if got.Kind != tt.want {
			t.Errorf("Translate(%v).Kind = %v, want %v", tt.mask, got.Kind, tt.want)
		}
		if got.Modifiers != key.ModControl {
			t.Errorf("Translate(%v).Modifiers = %v, want Ctrl", tt.mask, got.Modifiers)
		}
		if got.Column != 5 || got.Row != 6 {
			t.Errorf("Translate(%v) position = %d,%d", tt.mask, got.Column, got.Row)
		}
	}
}

func TestFields(t *testing.T) {
	e := Event{Kind: KindDown, Button: ButtonLeft, Column: 4, Row: 7, Modifiers: key.ModShift}
	f := e.Fields()
	if f[FieldKind] != "Down" || f[FieldButton] != "Left" {
		t.Errorf("Fields() = %v", f)
	}
	if f[FieldColumn] != int64(4) || f[FieldRow] != int64(7) || f[FieldModifiers] != int64(1) {
		t.Errorf("Fields() = %v", f)
	}

	f = Event{Kind: KindScrollUp}.Fields()
	if _, ok := f[FieldButton]; ok {
		t.Errorf("scroll event should not carry a button: %v", f)
	}
}

func TestNames(t *testing.T) {
	for k := KindMoved; k <= KindScrollRight; k++ {
		got, ok := KindFromName(k.String())
		if !ok || got != k {
			t.Errorf("KindFromName(%q) = %v, %v", k, got, ok)
		}
	}
	for _, b := range []Button{ButtonLeft, ButtonRight, ButtonMiddle} {
		got, ok := ButtonFromName(b.String())
		if !ok || got != b {
			t.Errorf("ButtonFromName(%q) = %v, %v", b, got, ok)
		}
	}
	if s := (Event{Kind: KindDown, Button: ButtonLeft, Column: 3, Row: 4}).String(); s != "Down(Left) at 3,4" {
		t.Errorf("String() = %q", s)
	}
}
