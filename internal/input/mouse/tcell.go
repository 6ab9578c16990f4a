package mouse

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hexpatch/internal/input/key"
)

// Translator turns terminal mouse reports into Events.
// It is not safe for concurrent use; the terminal loop owns it.
type Translator struct {
	held Button
}

// NewTranslator creates a Translator with no button held.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate converts one report. Wheel reports become scroll events; button
// reports become Down, Drag or Up depending on what was held before.
func (t *Translator) Translate(ev *tcell.EventMouse) Event {
	col, row := ev.Position()
	e := Event{
		Column:    col,
		Row:       row,
		Modifiers: modFromTcell(ev.Modifiers()),
	}

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		e.Kind = KindScrollUp
		return e
	case buttons&tcell.WheelDown != 0:
		e.Kind = KindScrollDown
		return e
	case buttons&tcell.WheelLeft != 0:
		e.Kind = KindScrollLeft
		return e
	case buttons&tcell.WheelRight != 0:
		e.Kind = KindScrollRight
		return e
	}

	pressed := buttonFromMask(buttons)
	switch {
	case pressed == ButtonNone && t.held == ButtonNone:
		e.Kind = KindMoved
	case pressed == ButtonNone:
		e.Kind = KindUp
		e.Button = t.held
	case pressed == t.held:
		e.Kind = KindDrag
		e.Button = pressed
	default:
		e.Kind = KindDown
		e.Button = pressed
	}
	t.held = pressed
	return e
}

// Reset forgets the held button.
func (t *Translator) Reset() {
	t.held = ButtonNone
}

func buttonFromMask(b tcell.ButtonMask) Button {
	switch {
	case b&tcell.Button1 != 0:
		return ButtonLeft
	case b&tcell.Button2 != 0:
		return ButtonRight
	case b&tcell.Button3 != 0:
		return ButtonMiddle
	default:
		return ButtonNone
	}
}

func modFromTcell(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModControl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
