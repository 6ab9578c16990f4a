package api

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hexpatch/internal/input/key"
	"github.com/dshills/hexpatch/internal/input/mouse"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// KeyEvent converts e to the table passed to on_key:
// {code, char, modifiers, kind, state}.
func KeyEvent(L *lua.LState, e key.Event) lua.LValue {
	return plua.NewBridge(L).ToLuaValue(e.Fields())
}

// MouseEvent converts e to the table passed to on_mouse:
// {kind, button, column, row, modifiers}.
func MouseEvent(L *lua.LState, e mouse.Event) lua.LValue {
	return plua.NewBridge(L).ToLuaValue(e.Fields())
}
