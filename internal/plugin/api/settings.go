package api

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hexpatch/internal/input/key"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
	"github.com/dshills/hexpatch/internal/settings"
)

// SettingsTypeName is the metatable name of settings userdata.
const SettingsTypeName = "hexpatch.settings"

// Field prefixes of typed settings.
const (
	keyPrefix   = "key_"
	colorPrefix = "color_"
)

// Settings is the state behind a settings userdata.
type Settings struct {
	scope    *plua.Scope
	settings *settings.Settings
}

// SettingsModule implements the settings userdata.
type SettingsModule struct{}

// Name returns the module name.
func (m *SettingsModule) Name() string {
	return SettingsTypeName
}

// Register registers the module into the Lua state.
func (m *SettingsModule) Register(L *lua.LState) error {
	methods := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get_custom":   m.getCustom,
		"set_custom":   m.setCustom,
		"custom_names": m.customNames,
	})

	mt := L.NewTypeMetatable(SettingsTypeName)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		s := checkSettings(L)
		name := L.CheckString(2)
		bridge := plua.NewBridge(L)

		switch {
		case strings.HasPrefix(name, keyPrefix):
			if e, ok := s.settings.KeyBinding(name[len(keyPrefix):]); ok {
				L.Push(bridge.ToLuaValue(e.Fields()))
				return 1
			}
		case strings.HasPrefix(name, colorPrefix):
			if st, ok := s.settings.ColorStyle(name[len(colorPrefix):]); ok {
				L.Push(bridge.ToLuaValue(st.Fields()))
				return 1
			}
		}
		L.Push(methods.RawGetString(name))
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(m.newIndex))
	return nil
}

// NewSettings wraps s as a settings userdata bound to scope.
func NewSettings(L *lua.LState, scope *plua.Scope, s *settings.Settings) *lua.LUserData {
	return newHandle(L, SettingsTypeName, &Settings{scope: scope, settings: s})
}

func checkSettings(L *lua.LState) *Settings {
	ud := L.CheckUserData(1)
	s, ok := ud.Value.(*Settings)
	if !ok {
		L.ArgError(1, "settings expected")
	}
	s.scope.Check(L)
	return s
}

func (m *SettingsModule) newIndex(L *lua.LState) int {
	s := checkSettings(L)
	name := L.CheckString(2)
	value := plua.NewBridge(L).ToGoValue(L.Get(3))

	var err error
	switch {
	case strings.HasPrefix(name, keyPrefix):
		var e key.Event
		if e, err = key.FromValue(value); err == nil {
			err = s.settings.SetKeyBinding(name[len(keyPrefix):], e)
		}
	case strings.HasPrefix(name, colorPrefix):
		var st settings.Style
		if st, err = settings.ParseStyle(value); err == nil {
			err = s.settings.SetColorStyle(name[len(colorPrefix):], st)
		}
	default:
		err = fmt.Errorf("%w: settings.%s", ErrUnknownField, name)
	}
	if err != nil {
		plua.Raise(L, fmt.Errorf("settings.%s: %w", name, err))
	}
	return 0
}

// settings:get_custom(name) -> value or nil
func (m *SettingsModule) getCustom(L *lua.LState) int {
	s := checkSettings(L)
	v, ok := s.settings.GetCustom(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(ValueToLua(L, v))
	return 1
}

// settings:set_custom(name, value)
// nil removes the entry.
func (m *SettingsModule) setCustom(L *lua.LState) int {
	s := checkSettings(L)
	name := L.CheckString(2)
	v, err := ValueFromLua(L, L.Get(3))
	if err != nil {
		plua.Raise(L, fmt.Errorf("set_custom(%q): %w", name, err))
	}
	s.settings.SetCustom(name, v)
	return 0
}

// settings:custom_names() -> {name, ...}
func (m *SettingsModule) customNames(L *lua.LState) int {
	s := checkSettings(L)
	L.Push(plua.NewBridge(L).ToLuaValue(s.settings.CustomNames()))
	return 1
}

// ValueToLua converts a custom value for Lua. Styles and key bindings
// become tables; Absent becomes nil.
func ValueToLua(L *lua.LState, v settings.Value) lua.LValue {
	return plua.NewBridge(L).ToLuaValue(v.Any())
}

// ValueFromLua converts a Lua value into a custom value. Lua has a single
// number type, so integral numbers become Integer and others Float. Tables
// with a code field are key bindings; other tables are styles.
func ValueFromLua(L *lua.LState, lv lua.LValue) (settings.Value, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return settings.Absent(), nil
	case lua.LBool:
		return settings.Boolean(bool(v)), nil
	case lua.LNumber:
		return settings.NumberValue(float64(v)), nil
	case lua.LString:
		return settings.String(string(v)), nil
	case *lua.LTable:
		return settings.ValueOf(plua.NewBridge(L).ToGoValue(v))
	default:
		return settings.Value{}, fmt.Errorf("%w: unsupported Lua type %s", settings.ErrInvalidValue, lv.Type())
	}
}
