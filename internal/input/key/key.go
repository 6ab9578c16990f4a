package key

import (
	"fmt"
	"strings"
)

// Code identifies a keyboard key.
// For character keys use CodeChar and set Event.Char.
type Code uint8

const (
	// CodeNull represents no key.
	CodeNull Code = iota

	CodeBackspace
	CodeEnter
	CodeLeft
	CodeRight
	CodeUp
	CodeDown
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeTab
	CodeBackTab
	CodeDelete
	CodeInsert

	// Function keys
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12

	// CodeChar is used for character keys. The character is in Event.Char.
	CodeChar

	CodeEsc
	CodeCapsLock
	CodeScrollLock
	CodeNumLock
	CodePrintScreen
	CodePause
	CodeMenu
	CodeKeypadBegin

	codeCount
)

var codeNames = [codeCount]string{
	CodeNull:        "Null",
	CodeBackspace:   "Backspace",
	CodeEnter:       "Enter",
	CodeLeft:        "Left",
	CodeRight:       "Right",
	CodeUp:          "Up",
	CodeDown:        "Down",
	CodeHome:        "Home",
	CodeEnd:         "End",
	CodePageUp:      "PageUp",
	CodePageDown:    "PageDown",
	CodeTab:         "Tab",
	CodeBackTab:     "BackTab",
	CodeDelete:      "Delete",
	CodeInsert:      "Insert",
	CodeF1:          "F1",
	CodeF2:          "F2",
	CodeF3:          "F3",
	CodeF4:          "F4",
	CodeF5:          "F5",
	CodeF6:          "F6",
	CodeF7:          "F7",
	CodeF8:          "F8",
	CodeF9:          "F9",
	CodeF10:         "F10",
	CodeF11:         "F11",
	CodeF12:         "F12",
	CodeChar:        "Char",
	CodeEsc:         "Esc",
	CodeCapsLock:    "CapsLock",
	CodeScrollLock:  "ScrollLock",
	CodeNumLock:     "NumLock",
	CodePrintScreen: "PrintScreen",
	CodePause:       "Pause",
	CodeMenu:        "Menu",
	CodeKeypadBegin: "KeypadBegin",
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if c < codeCount {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", c)
}

// IsFunctionKey returns true for F1-F12.
func (c Code) IsFunctionKey() bool {
	return c >= CodeF1 && c <= CodeF12
}

// IsArrowKey returns true for the four arrow keys.
func (c Code) IsArrowKey() bool {
	return c >= CodeLeft && c <= CodeDown
}

// codeAliases maps alternative spellings (lowercase) to codes.
var codeAliases = map[string]Code{
	"escape":    CodeEsc,
	"return":    CodeEnter,
	"cr":        CodeEnter,
	"bs":        CodeBackspace,
	"del":       CodeDelete,
	"ins":       CodeInsert,
	"pgup":      CodePageUp,
	"pgdn":      CodePageDown,
	"backtab":   CodeBackTab,
	"print":     CodePrintScreen,
	"character": CodeChar,
}

// codeByName maps canonical names (lowercase) to codes.
var codeByName = func() map[string]Code {
	m := make(map[string]Code, codeCount)
	for c := Code(0); c < codeCount; c++ {
		m[strings.ToLower(codeNames[c])] = c
	}
	return m
}()

// CodeFromName returns the Code for a name (case-insensitive).
func CodeFromName(name string) (Code, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := codeByName[name]; ok {
		return c, true
	}
	c, ok := codeAliases[name]
	return c, ok
}

// Kind is the phase of a key event.
type Kind uint8

const (
	// KindPress is a key press. It is the zero value.
	KindPress Kind = iota
	// KindRelease is a key release.
	KindRelease
	// KindRepeat is an auto-repeat while held.
	KindRepeat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPress:
		return "Press"
	case KindRelease:
		return "Release"
	case KindRepeat:
		return "Repeat"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// KindFromName returns the Kind for a name (case-insensitive).
func KindFromName(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "press":
		return KindPress, true
	case "release":
		return KindRelease, true
	case "repeat":
		return KindRepeat, true
	default:
		return KindPress, false
	}
}

// State is the lock/keypad state bitmask that accompanies a key event.
type State uint8

// Key state flags.
const (
	StateNone     State = 0
	StateKeypad   State = 1 << 0
	StateCapsLock State = 1 << 1
	StateNumLock  State = 1 << 2
)

// Has returns true if s contains the flag.
func (s State) Has(flag State) bool {
	return s&flag != 0
}
