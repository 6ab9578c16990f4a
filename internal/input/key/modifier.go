package key

import "strings"

// Modifier represents keyboard modifier keys as a bitmask.
// The bit values are part of the plugin API and must not change.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	ModShift   Modifier = 1 << 0
	ModControl Modifier = 1 << 1
	ModAlt     Modifier = 1 << 2
	ModSuper   Modifier = 1 << 3
	ModHyper   Modifier = 1 << 4
	ModMeta    Modifier = 1 << 5
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasControl returns true if Control is pressed.
func (m Modifier) HasControl() bool {
	return m.Has(ModControl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.Has(ModControl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModSuper) {
		parts = append(parts, "Super")
	}
	if m.Has(ModHyper) {
		parts = append(parts, "Hyper")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModControl,
	"control": ModControl,
	"c":       ModControl,
	"alt":     ModAlt,
	"a":       ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"win":     ModSuper,
	"d":       ModSuper, // Vim uses D for command
	"hyper":   ModHyper,
	"meta":    ModMeta,
	"m":       ModMeta,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return ModNone
}
