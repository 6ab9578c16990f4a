package api

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hexpatch/internal/notify"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// ContextTypeName is the metatable name of context userdata.
const ContextTypeName = "hexpatch.context"

// ContextModule implements the context userdata.
type ContextModule struct{}

// Name returns the module name.
func (m *ContextModule) Name() string {
	return ContextTypeName
}

// Register registers the module into the Lua state.
func (m *ContextModule) Register(L *lua.LState) error {
	mt := L.NewTypeMetatable(ContextTypeName)
	L.SetField(mt, "__index", L.NewFunction(m.index))
	L.SetField(mt, "__newindex", L.NewFunction(m.newIndex))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("context"))
		return 1
	}))
	return nil
}

// NewContext wraps ctx as a context userdata. ctx.Host must be normalized.
func NewContext(L *lua.LState, ctx *Context) *lua.LUserData {
	return newHandle(L, ContextTypeName, ctx)
}

func checkContext(L *lua.LState) (*lua.LUserData, *Context) {
	ud := L.CheckUserData(1)
	ctx, ok := ud.Value.(*Context)
	if !ok {
		L.ArgError(1, "context expected")
	}
	ctx.Scope.Check(L)
	return ud, ctx
}

func (m *ContextModule) index(L *lua.LState) int {
	ud, ctx := checkContext(L)
	host := ctx.Host

	switch L.CheckString(2) {
	case "data":
		L.Push(NewBytes(L, ctx.Scope, host.Data))
	case "settings":
		L.Push(NewSettings(L, ctx.Scope, host.Settings))
	case "header":
		L.Push(NewHeader(L, ctx.Scope, host.Header))
	case "offset":
		L.Push(lua.LNumber(host.Offset))
	case "log":
		L.Push(L.NewFunction(logFunc(ud, ctx)))
	case "add_command":
		L.Push(L.NewFunction(addCommandFunc(ud, ctx)))
	case "remove_command":
		L.Push(L.NewFunction(removeCommandFunc(ud, ctx)))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func (m *ContextModule) newIndex(L *lua.LState) int {
	checkContext(L)
	plua.Raise(L, ErrReadOnly)
	return 0
}

// log(level, message)
// Appends to the notification log. Non-number levels log at Debug and
// non-string messages go through tostring. Never raises on bad arguments.
func logFunc(self *lua.LUserData, ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		ctx.Scope.Check(L)
		base := argBase(L, self)

		level := notify.LevelDebug
		if n, ok := L.Get(base).(lua.LNumber); ok {
			clamped := math.Max(math.Min(float64(n), float64(notify.LevelError)), 0)
			level = notify.FromScript(int(clamped))
		}
		msg := L.ToStringMeta(L.Get(base + 1)).String()

		ctx.Host.Log.Log(level, msg)
		return 0
	}
}

// add_command(id, description)
func addCommandFunc(self *lua.LUserData, ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		ctx.Scope.Check(L)
		base := argBase(L, self)

		id := L.CheckString(base)
		description := L.OptString(base+1, "")
		if L.GetGlobal(id).Type() != lua.LTFunction {
			plua.Raise(L, &CommandValidationError{Command: id})
		}
		ctx.Commands.Add(id, description)
		return 0
	}
}

// remove_command(id) -> bool
func removeCommandFunc(self *lua.LUserData, ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		ctx.Scope.Check(L)
		base := argBase(L, self)

		L.Push(lua.LBool(ctx.Commands.Remove(L.CheckString(base))))
		return 1
	}
}
