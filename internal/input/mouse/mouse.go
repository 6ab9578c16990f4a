package mouse

import (
	"fmt"
	"strings"

	"github.com/dshills/hexpatch/internal/input/key"
)

// Kind is the type of mouse event.
type Kind uint8

const (
	// KindMoved is motion without a held button.
	KindMoved Kind = iota
	// KindDown is a button press.
	KindDown
	// KindUp is a button release.
	KindUp
	// KindDrag is motion with a held button.
	KindDrag
	KindScrollDown
	KindScrollUp
	KindScrollLeft
	KindScrollRight
)

var kindNames = [...]string{
	KindMoved:       "Moved",
	KindDown:        "Down",
	KindUp:          "Up",
	KindDrag:        "Drag",
	KindScrollDown:  "ScrollDown",
	KindScrollUp:    "ScrollUp",
	KindScrollLeft:  "ScrollLeft",
	KindScrollRight: "ScrollRight",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// HasButton returns true for kinds that carry a button.
func (k Kind) HasButton() bool {
	return k == KindDown || k == KindUp || k == KindDrag
}

// IsScroll returns true for wheel events.
func (k Kind) IsScroll() bool {
	return k >= KindScrollDown && k <= KindScrollRight
}

// KindFromName returns the Kind for a name (case-insensitive).
func KindFromName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), true
		}
	}
	return KindMoved, false
}

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	default:
		return "None"
	}
}

// ButtonFromName returns the Button for a name (case-insensitive).
func ButtonFromName(name string) (Button, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return ButtonLeft, true
	case "right":
		return ButtonRight, true
	case "middle":
		return ButtonMiddle, true
	default:
		return ButtonNone, false
	}
}

// Event is a single mouse event. Column and Row are zero-based screen cells.
type Event struct {
	Kind      Kind
	Button    Button
	Column    int
	Row       int
	Modifiers key.Modifier
}

// String returns a human-readable representation like "Down(Left) at 3,4".
func (e Event) String() string {
	var sb strings.Builder
	if mods := e.Modifiers.String(); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte('+')
	}
	sb.WriteString(e.Kind.String())
	if e.Kind.HasButton() {
		fmt.Fprintf(&sb, "(%s)", e.Button)
	}
	fmt.Fprintf(&sb, " at %d,%d", e.Column, e.Row)
	return sb.String()
}

// Field names of the table form of an Event.
const (
	FieldKind      = "kind"
	FieldButton    = "button"
	FieldColumn    = "column"
	FieldRow       = "row"
	FieldModifiers = "modifiers"
)

// Fields returns the table form of e as seen by plugins:
// {kind, button, column, row, modifiers}. button is present only for
// Down, Up and Drag.
func (e Event) Fields() map[string]any {
	m := map[string]any{
		FieldKind:      e.Kind.String(),
		FieldColumn:    int64(e.Column),
		FieldRow:       int64(e.Row),
		FieldModifiers: int64(e.Modifiers),
	}
	if e.Kind.HasButton() {
		m[FieldButton] = e.Button.String()
	}
	return m
}
