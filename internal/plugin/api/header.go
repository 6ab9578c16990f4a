package api

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hexpatch/internal/header"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// HeaderTypeName is the metatable name of header userdata.
const HeaderTypeName = "hexpatch.header"

// Header is the state behind a header userdata.
type Header struct {
	scope *plua.Scope
	view  header.View
}

// HeaderModule implements the read-only header userdata.
type HeaderModule struct{}

// Name returns the module name.
func (m *HeaderModule) Name() string {
	return HeaderTypeName
}

// Register registers the module into the Lua state.
func (m *HeaderModule) Register(L *lua.LState) error {
	mt := L.NewTypeMetatable(HeaderTypeName)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		h := checkHeader(L)
		switch L.CheckString(2) {
		case "format":
			L.Push(lua.LString(h.view.Format.String()))
		case "bitness":
			L.Push(lua.LNumber(h.view.Bitness))
		case "architecture":
			L.Push(lua.LString(h.view.Architecture))
		case "entry_point":
			L.Push(lua.LNumber(h.view.EntryPoint))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		checkHeader(L)
		plua.Raise(L, ErrReadOnly)
		return 0
	}))
	return nil
}

// NewHeader wraps view as a header userdata bound to scope.
func NewHeader(L *lua.LState, scope *plua.Scope, view header.View) *lua.LUserData {
	return newHandle(L, HeaderTypeName, &Header{scope: scope, view: view})
}

func checkHeader(L *lua.LState) *Header {
	ud := L.CheckUserData(1)
	h, ok := ud.Value.(*Header)
	if !ok {
		L.ArgError(1, "header expected")
	}
	h.scope.Check(L)
	return h
}
