package api

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// BytesTypeName is the metatable name of byte buffer userdata.
const BytesTypeName = "hexpatch.bytes"

// Bytes is the state behind a byte buffer userdata. Writes go straight to
// the shared slice.
type Bytes struct {
	scope *plua.Scope
	data  *[]byte
}

// BytesModule implements the byte buffer userdata.
type BytesModule struct {
	methods map[string]lua.LGFunction
}

// NewBytesModule creates a new bytes module.
func NewBytesModule() *BytesModule {
	m := &BytesModule{}
	m.methods = map[string]lua.LGFunction{
		"get":       m.get,
		"set":       m.set,
		"len":       m.length,
		"push":      m.push,
		"pop":       m.pop,
		"to_string": m.toString,
	}
	return m
}

// Name returns the module name.
func (m *BytesModule) Name() string {
	return BytesTypeName
}

// Register registers the module into the Lua state.
func (m *BytesModule) Register(L *lua.LState) error {
	methods := L.SetFuncs(L.NewTable(), m.methods)

	mt := L.NewTypeMetatable(BytesTypeName)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		b := checkBytes(L)
		switch k := L.Get(2).(type) {
		case lua.LNumber:
			i := checkIndex(L, k, len(*b.data))
			L.Push(lua.LNumber((*b.data)[i]))
		case lua.LString:
			L.Push(methods.RawGetString(string(k)))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		b := checkBytes(L)
		n, ok := L.Get(2).(lua.LNumber)
		if !ok {
			plua.Raise(L, fmt.Errorf("%w: byte index must be a number", ErrIndexOutOfRange))
		}
		i := checkIndex(L, n, len(*b.data))
		(*b.data)[i] = checkByte(L, L.Get(3))
		return 0
	}))
	L.SetField(mt, "__len", L.NewFunction(m.length))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		b := checkBytes(L)
		L.Push(lua.LString(fmt.Sprintf("bytes(%d)", len(*b.data))))
		return 1
	}))
	return nil
}

// NewBytes wraps data as a byte buffer userdata bound to scope.
func NewBytes(L *lua.LState, scope *plua.Scope, data *[]byte) *lua.LUserData {
	return newHandle(L, BytesTypeName, &Bytes{scope: scope, data: data})
}

func checkBytes(L *lua.LState) *Bytes {
	ud := L.CheckUserData(1)
	b, ok := ud.Value.(*Bytes)
	if !ok {
		L.ArgError(1, "bytes expected")
	}
	b.scope.Check(L)
	return b
}

func checkIndex(L *lua.LState, n lua.LNumber, length int) int {
	i := int(n)
	if lua.LNumber(i) != n || i < 0 || i >= length {
		plua.Raise(L, fmt.Errorf("%w: %v (length %d)", ErrIndexOutOfRange, n, length))
	}
	return i
}

func checkByte(L *lua.LState, v lua.LValue) byte {
	n, ok := v.(lua.LNumber)
	if !ok || n != lua.LNumber(int(n)) || n < 0 || n > 255 {
		plua.Raise(L, fmt.Errorf("%w: got %s", ErrInvalidByte, L.ToStringMeta(v).String()))
	}
	return byte(n)
}

// data:get(i) -> number
func (m *BytesModule) get(L *lua.LState) int {
	b := checkBytes(L)
	i := checkIndex(L, L.CheckNumber(2), len(*b.data))
	L.Push(lua.LNumber((*b.data)[i]))
	return 1
}

// data:set(i, v)
func (m *BytesModule) set(L *lua.LState) int {
	b := checkBytes(L)
	i := checkIndex(L, L.CheckNumber(2), len(*b.data))
	(*b.data)[i] = checkByte(L, L.Get(3))
	return 0
}

// data:len() -> number
func (m *BytesModule) length(L *lua.LState) int {
	b := checkBytes(L)
	L.Push(lua.LNumber(len(*b.data)))
	return 1
}

// data:push(v)
func (m *BytesModule) push(L *lua.LState) int {
	b := checkBytes(L)
	*b.data = append(*b.data, checkByte(L, L.Get(2)))
	return 0
}

// data:pop() -> number or nil
func (m *BytesModule) pop(L *lua.LState) int {
	b := checkBytes(L)
	n := len(*b.data)
	if n == 0 {
		L.Push(lua.LNil)
		return 1
	}
	v := (*b.data)[n-1]
	*b.data = (*b.data)[:n-1]
	L.Push(lua.LNumber(v))
	return 1
}

// data:to_string() -> string
func (m *BytesModule) toString(L *lua.LState) int {
	b := checkBytes(L)
	L.Push(lua.LString(*b.data))
	return 1
}
