package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Key names: "Enter", "Esc", "Tab", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	// A lone "+" is a character; "Ctrl++" is Ctrl with "+".
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseModifierStyle(spec)
	}

	return parseKeyWithModifiers(spec, ModNone)
}

// parseVimStyle parses Vim-style notation like "C-s", "A-F4", "CR", "Esc"
func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	if len(parts) == 1 {
		return parseKeyWithModifiers(parts[0], ModNone)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods = mods.With(ModControl)
		case "a":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		case "d":
			mods = mods.With(ModSuper)
		case "m":
			mods = mods.With(ModMeta)
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}
	return parseKeyWithModifiers(parts[len(parts)-1], mods)
}

// parseModifierStyle parses "Ctrl+S" style notation
func parseModifierStyle(spec string) (Event, error) {
	keyPart := spec[strings.LastIndex(spec, "+")+1:]
	modPart := spec[:len(spec)-len(keyPart)-1]
	if keyPart == "" && strings.HasSuffix(modPart, "+") {
		keyPart = "+"
		modPart = strings.TrimSuffix(modPart, "+")
	}

	var mods Modifier
	for _, p := range strings.Split(modPart, "+") {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, strings.TrimSpace(p))
		}
		mods = mods.With(mod)
	}
	return parseKeyWithModifiers(keyPart, mods)
}

// parseKeyWithModifiers parses a key part with already-known modifiers
func parseKeyWithModifiers(keyPart string, mods Modifier) (Event, error) {
	if strings.TrimSpace(keyPart) != "" {
		keyPart = strings.TrimSpace(keyPart)
	}
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		switch {
		case mods.HasControl() || mods.HasAlt():
			// Chords are bound on the base character.
			r = unicode.ToLower(r)
		case unicode.IsUpper(r):
			mods = mods.With(ModShift)
		}
		return NewChar(r, mods), nil
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return NewChar(' ', mods), nil
	case "lt":
		return NewChar('<', mods), nil
	case "gt":
		return NewChar('>', mods), nil
	case "bar":
		return NewChar('|', mods), nil
	case "bslash":
		return NewChar('\\', mods), nil
	case "plus":
		return NewChar('+', mods), nil
	case "minus":
		return NewChar('-', mods), nil
	}

	if code, ok := CodeFromName(keyPart); ok && code != CodeChar {
		return New(code, mods), nil
	}
	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}
