package settings

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/hexpatch/internal/input/key"
)

func TestDefaultBindings(t *testing.T) {
	s := Default()
	tests := []struct {
		name string
		want key.Event
	}{
		{"up", key.New(key.CodeUp, key.ModNone)},
		{"quit", key.NewChar('c', key.ModControl)},
		{"save", key.NewChar('s', key.ModControl)},
		{"save_and_quit", key.NewChar('x', key.ModControl)},
		{"confirm", key.New(key.CodeEnter, key.ModNone)},
		{"close_popup", key.New(key.CodeEsc, key.ModNone)},
		{"run", key.NewChar(':', key.ModNone)},
	}
	for _, tt := range tests {
		got, ok := s.KeyBinding(tt.name)
		if !ok {
			t.Errorf("KeyBinding(%q) not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("KeyBinding(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeyBindingRoundTrip(t *testing.T) {
	s := Default()
	want := key.Event{Code: key.CodeF5, Modifiers: key.ModShift | key.ModHyper, Kind: key.KindRelease, State: key.StateKeypad | key.StateNumLock}
	if err := s.SetKeyBinding("confirm", want); err != nil {
		t.Fatalf("SetKeyBinding() error = %v", err)
	}
	got, _ := s.KeyBinding("confirm")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("KeyBinding() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownNames(t *testing.T) {
	s := Default()
	if err := s.SetKeyBinding("nope", key.Event{}); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("SetKeyBinding(nope) error = %v", err)
	}
	if err := s.SetColorStyle("nope", Style{}); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("SetColorStyle(nope) error = %v", err)
	}
	if _, ok := s.KeyBinding("nope"); ok {
		t.Error("KeyBinding(nope) found")
	}
}

func TestAction(t *testing.T) {
	s := Default()
	ev := key.NewChar('s', key.ModControl)
	ev.Kind = key.KindRepeat
	name, ok := s.Action(ev)
	if !ok || name != "save" {
		t.Errorf("Action(Ctrl+s) = %q, %v", name, ok)
	}
	if _, ok := s.Action(key.NewChar('z', key.ModAlt)); ok {
		t.Error("Action(Alt+z) should not match")
	}
}

func TestClone(t *testing.T) {
	s := Default()
	s.SetCustom("a", Integer(1))
	c := s.Clone()
	c.SetCustom("a", Integer(2))
	c.Color.Address = Style{}

	if v, _ := s.GetCustom("a"); v != Integer(1) {
		t.Errorf("original custom changed: %v", v)
	}
	if s.Color.Address == c.Color.Address {
		t.Error("original color changed")
	}
}

func TestNames(t *testing.T) {
	if len(KeyNames()) != len(keyFields) || KeyNames()[0] != "up" {
		t.Errorf("KeyNames() = %v", KeyNames())
	}
	want := []string{"address", "hex", "hex_selected", "text", "assembly", "log", "status", "popup"}
	if diff := cmp.Diff(want, ColorNames()); diff != "" {
		t.Errorf("ColorNames() mismatch (-want +got):\n%s", diff)
	}
}
