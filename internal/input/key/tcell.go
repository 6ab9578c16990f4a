package key

import "github.com/gdamore/tcell/v2"

// FromTcell converts a terminal key event into an Event.
// Terminals only report presses, so Kind is always KindPress.
func FromTcell(ev *tcell.EventKey) Event {
	mods := modFromTcell(ev.Modifiers())
	k := ev.Key()

	switch k {
	case tcell.KeyRune:
		return NewChar(ev.Rune(), mods)
	case tcell.KeyEscape:
		return New(CodeEsc, mods)
	case tcell.KeyEnter:
		return New(CodeEnter, mods)
	case tcell.KeyTab:
		return New(CodeTab, mods)
	case tcell.KeyBacktab:
		return New(CodeBackTab, mods)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return New(CodeBackspace, mods)
	case tcell.KeyDelete:
		return New(CodeDelete, mods)
	case tcell.KeyInsert:
		return New(CodeInsert, mods)
	case tcell.KeyHome:
		return New(CodeHome, mods)
	case tcell.KeyEnd:
		return New(CodeEnd, mods)
	case tcell.KeyPgUp:
		return New(CodePageUp, mods)
	case tcell.KeyPgDn:
		return New(CodePageDown, mods)
	case tcell.KeyUp:
		return New(CodeUp, mods)
	case tcell.KeyDown:
		return New(CodeDown, mods)
	case tcell.KeyLeft:
		return New(CodeLeft, mods)
	case tcell.KeyRight:
		return New(CodeRight, mods)
	case tcell.KeyPrint:
		return New(CodePrintScreen, mods)
	case tcell.KeyPause:
		return New(CodePause, mods)
	}

	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return New(CodeF1+Code(k-tcell.KeyF1), mods)
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return NewChar(rune('a'+int(k-tcell.KeyCtrlA)), mods.With(ModControl))
	}
	if k == tcell.KeyCtrlSpace {
		return NewChar(' ', mods.With(ModControl))
	}
	return New(CodeNull, mods)
}

// ToTcell converts an Event into a terminal key event.
// Character chords with Control are mapped onto tcell's control keys.
func ToTcell(e Event) *tcell.EventKey {
	mods := modToTcell(e.Modifiers)

	if e.IsChar() {
		if e.Modifiers.HasControl() && e.Char >= 'a' && e.Char <= 'z' {
			return tcell.NewEventKey(tcell.KeyCtrlA+tcell.Key(e.Char-'a'), 0, mods)
		}
		return tcell.NewEventKey(tcell.KeyRune, e.Char, mods)
	}
	if e.Code.IsFunctionKey() {
		return tcell.NewEventKey(tcell.KeyF1+tcell.Key(e.Code-CodeF1), 0, mods)
	}

	var k tcell.Key
	switch e.Code {
	case CodeEsc:
		k = tcell.KeyEscape
	case CodeEnter:
		k = tcell.KeyEnter
	case CodeTab:
		k = tcell.KeyTab
	case CodeBackTab:
		k = tcell.KeyBacktab
	case CodeBackspace:
		k = tcell.KeyBackspace2
	case CodeDelete:
		k = tcell.KeyDelete
	case CodeInsert:
		k = tcell.KeyInsert
	case CodeHome:
		k = tcell.KeyHome
	case CodeEnd:
		k = tcell.KeyEnd
	case CodePageUp:
		k = tcell.KeyPgUp
	case CodePageDown:
		k = tcell.KeyPgDn
	case CodeUp:
		k = tcell.KeyUp
	case CodeDown:
		k = tcell.KeyDown
	case CodeLeft:
		k = tcell.KeyLeft
	case CodeRight:
		k = tcell.KeyRight
	case CodePrintScreen:
		k = tcell.KeyPrint
	case CodePause:
		k = tcell.KeyPause
	default:
		k = tcell.KeyNUL
	}
	return tcell.NewEventKey(k, 0, mods)
}

func modFromTcell(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(ModControl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}

func modToTcell(m Modifier) tcell.ModMask {
	var mods tcell.ModMask
	if m.HasShift() {
		mods |= tcell.ModShift
	}
	if m.HasControl() {
		mods |= tcell.ModCtrl
	}
	if m.HasAlt() {
		mods |= tcell.ModAlt
	}
	if m.Has(ModMeta) || m.Has(ModSuper) {
		mods |= tcell.ModMeta
	}
	return mods
}
