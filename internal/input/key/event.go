package key

import (
	"strings"
	"unicode"
)

// Event represents a single key event.
type Event struct {
	// Code identifies the key.
	Code Code

	// Char is the character for CodeChar events.
	Char rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Kind is press, release or repeat.
	Kind Kind

	// State carries keypad and lock state.
	State State
}

// New creates a press event for a non-character key.
func New(code Code, mods Modifier) Event {
	return Event{Code: code, Modifiers: mods}
}

// NewChar creates a press event for a character.
func NewChar(r rune, mods Modifier) Event {
	return Event{Code: CodeChar, Char: r, Modifiers: mods}
}

// IsChar returns true if this is a character key event.
func (e Event) IsChar() bool {
	return e.Code == CodeChar
}

// IsPrintable returns true if the event would insert a printable character.
func (e Event) IsPrintable() bool {
	return e.IsChar() && unicode.IsPrint(e.Char) && e.Modifiers&(ModControl|ModAlt|ModSuper|ModMeta) == 0
}

// Matches returns true if e and other describe the same key chord,
// ignoring kind and state.
func (e Event) Matches(other Event) bool {
	return e.Code == other.Code && e.Char == other.Char && e.Modifiers == other.Modifiers
}

// String returns a human-readable representation like "Ctrl+s" or "Alt+F4".
func (e Event) String() string {
	var sb strings.Builder
	if mods := e.Modifiers.String(); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte('+')
	}
	if e.IsChar() {
		switch e.Char {
		case ' ':
			sb.WriteString("Space")
		case 0:
			sb.WriteString("Char")
		default:
			sb.WriteRune(e.Char)
		}
	} else {
		sb.WriteString(e.Code.String())
	}
	if e.Kind != KindPress {
		sb.WriteString(" (")
		sb.WriteString(e.Kind.String())
		sb.WriteByte(')')
	}
	return sb.String()
}
