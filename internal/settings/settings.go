package settings

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dshills/hexpatch/internal/input/key"
)

// KeySettings holds the editor's key bindings.
type KeySettings struct {
	Up          key.Event
	Down        key.Event
	Left        key.Event
	Right       key.Event
	Next        key.Event
	Previous    key.Event
	First       key.Event
	Last        key.Event
	Quit        key.Event
	Save        key.Event
	SaveAndQuit key.Event
	Help        key.Event
	Log         key.Event
	Run         key.Event
	FindSymbol  key.Event
	Patch       key.Event
	Jump        key.Event
	ChangeView  key.Event
	Confirm     key.Event
	ClosePopup  key.Event
}

type keyField struct {
	name string
	ptr  func(*KeySettings) *key.Event
}

// keyFields lists the bindings in display order.
var keyFields = []keyField{
	{"up", func(k *KeySettings) *key.Event { return &k.Up }},
	{"down", func(k *KeySettings) *key.Event { return &k.Down }},
	{"left", func(k *KeySettings) *key.Event { return &k.Left }},
	{"right", func(k *KeySettings) *key.Event { return &k.Right }},
	{"next", func(k *KeySettings) *key.Event { return &k.Next }},
	{"previous", func(k *KeySettings) *key.Event { return &k.Previous }},
	{"first", func(k *KeySettings) *key.Event { return &k.First }},
	{"last", func(k *KeySettings) *key.Event { return &k.Last }},
	{"quit", func(k *KeySettings) *key.Event { return &k.Quit }},
	{"save", func(k *KeySettings) *key.Event { return &k.Save }},
	{"save_and_quit", func(k *KeySettings) *key.Event { return &k.SaveAndQuit }},
	{"help", func(k *KeySettings) *key.Event { return &k.Help }},
	{"log", func(k *KeySettings) *key.Event { return &k.Log }},
	{"run", func(k *KeySettings) *key.Event { return &k.Run }},
	{"find_symbol", func(k *KeySettings) *key.Event { return &k.FindSymbol }},
	{"patch", func(k *KeySettings) *key.Event { return &k.Patch }},
	{"jump", func(k *KeySettings) *key.Event { return &k.Jump }},
	{"change_view", func(k *KeySettings) *key.Event { return &k.ChangeView }},
	{"confirm", func(k *KeySettings) *key.Event { return &k.Confirm }},
	{"close_popup", func(k *KeySettings) *key.Event { return &k.ClosePopup }},
}

// DefaultKeySettings returns the built-in bindings.
func DefaultKeySettings() KeySettings {
	return KeySettings{
		Up:          key.New(key.CodeUp, key.ModNone),
		Down:        key.New(key.CodeDown, key.ModNone),
		Left:        key.New(key.CodeLeft, key.ModNone),
		Right:       key.New(key.CodeRight, key.ModNone),
		Next:        key.New(key.CodePageDown, key.ModNone),
		Previous:    key.New(key.CodePageUp, key.ModNone),
		First:       key.New(key.CodeHome, key.ModNone),
		Last:        key.New(key.CodeEnd, key.ModNone),
		Quit:        key.NewChar('c', key.ModControl),
		Save:        key.NewChar('s', key.ModControl),
		SaveAndQuit: key.NewChar('x', key.ModControl),
		Help:        key.NewChar('h', key.ModNone),
		Log:         key.NewChar('l', key.ModNone),
		Run:         key.NewChar(':', key.ModNone),
		FindSymbol:  key.NewChar('s', key.ModNone),
		Patch:       key.NewChar('p', key.ModNone),
		Jump:        key.NewChar('j', key.ModNone),
		ChangeView:  key.NewChar('v', key.ModNone),
		Confirm:     key.New(key.CodeEnter, key.ModNone),
		ClosePopup:  key.New(key.CodeEsc, key.ModNone),
	}
}

// ColorSettings holds the editor's color styles.
type ColorSettings struct {
	Address     Style
	Hex         Style
	HexSelected Style
	Text        Style
	Assembly    Style
	Log         Style
	Status      Style
	Popup       Style
}

type colorField struct {
	name string
	ptr  func(*ColorSettings) *Style
}

var colorFields = []colorField{
	{"address", func(c *ColorSettings) *Style { return &c.Address }},
	{"hex", func(c *ColorSettings) *Style { return &c.Hex }},
	{"hex_selected", func(c *ColorSettings) *Style { return &c.HexSelected }},
	{"text", func(c *ColorSettings) *Style { return &c.Text }},
	{"assembly", func(c *ColorSettings) *Style { return &c.Assembly }},
	{"log", func(c *ColorSettings) *Style { return &c.Log }},
	{"status", func(c *ColorSettings) *Style { return &c.Status }},
	{"popup", func(c *ColorSettings) *Style { return &c.Popup }},
}

// DefaultColorSettings returns the built-in styles.
func DefaultColorSettings() ColorSettings {
	return ColorSettings{
		Address:     Style{Fg: Named(Yellow)},
		Hex:         Style{},
		HexSelected: Style{Fg: Named(Black), Bg: Named(LightCyan)},
		Text:        Style{},
		Assembly:    Style{Fg: Named(LightGreen)},
		Log:         Style{Fg: Named(Gray)},
		Status:      Style{Fg: Named(Black), Bg: Named(Gray)},
		Popup:       Style{Fg: Named(White), Bg: Named(DarkGray)},
	}
}

// Settings is the complete settings state.
type Settings struct {
	Key    KeySettings
	Color  ColorSettings
	custom map[string]Value
}

// Default returns settings with the built-in bindings and styles and an
// empty custom store.
func Default() *Settings {
	return &Settings{
		Key:    DefaultKeySettings(),
		Color:  DefaultColorSettings(),
		custom: make(map[string]Value),
	}
}

// KeyNames returns the binding names in display order.
func KeyNames() []string {
	names := make([]string, len(keyFields))
	for i, f := range keyFields {
		names[i] = f.name
	}
	return names
}

// ColorNames returns the style names in display order.
func ColorNames() []string {
	names := make([]string, len(colorFields))
	for i, f := range colorFields {
		names[i] = f.name
	}
	return names
}

func (s *Settings) keyPtr(name string) *key.Event {
	for _, f := range keyFields {
		if f.name == name {
			return f.ptr(&s.Key)
		}
	}
	return nil
}

func (s *Settings) colorPtr(name string) *Style {
	for _, f := range colorFields {
		if f.name == name {
			return f.ptr(&s.Color)
		}
	}
	return nil
}

// KeyBinding returns the named binding.
func (s *Settings) KeyBinding(name string) (key.Event, bool) {
	if p := s.keyPtr(name); p != nil {
		return *p, true
	}
	return key.Event{}, false
}

// SetKeyBinding replaces the named binding.
func (s *Settings) SetKeyBinding(name string, e key.Event) error {
	p := s.keyPtr(name)
	if p == nil {
		return fmt.Errorf("%w: key %q", ErrUnknownSetting, name)
	}
	*p = e
	return nil
}

// ColorStyle returns the named style.
func (s *Settings) ColorStyle(name string) (Style, bool) {
	if p := s.colorPtr(name); p != nil {
		return *p, true
	}
	return Style{}, false
}

// SetColorStyle replaces the named style.
func (s *Settings) SetColorStyle(name string, st Style) error {
	p := s.colorPtr(name)
	if p == nil {
		return fmt.Errorf("%w: color %q", ErrUnknownSetting, name)
	}
	*p = st
	return nil
}

// Action returns the name of the first binding that matches e, ignoring
// kind and state.
func (s *Settings) Action(e key.Event) (string, bool) {
	for _, f := range keyFields {
		if f.ptr(&s.Key).Matches(e) {
			return f.name, true
		}
	}
	return "", false
}

// GetCustom returns a custom entry.
func (s *Settings) GetCustom(name string) (Value, bool) {
	v, ok := s.custom[name]
	return v, ok
}

// SetCustom stores a custom entry. Storing Absent removes it.
func (s *Settings) SetCustom(name string, v Value) {
	if v.IsAbsent() {
		delete(s.custom, name)
		return
	}
	if s.custom == nil {
		s.custom = make(map[string]Value)
	}
	s.custom[name] = v
}

// CustomNames returns the custom entry names in sorted order.
func (s *Settings) CustomNames() []string {
	return slices.Sorted(maps.Keys(s.custom))
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.custom = maps.Clone(s.custom)
	if c.custom == nil {
		c.custom = make(map[string]Value)
	}
	return &c
}
