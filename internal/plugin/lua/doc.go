// Package lua provides the Lua runtime integration for the plugin system.
//
// This package wraps the gopher-lua library to provide:
//   - Lua state management with a restricted standard library
//   - Go-Lua type conversion bridge
//   - Go errors that survive a trip through a Lua error
//   - Scopes that invalidate handles once a call returns
//
// # State
//
// The State type manages one Lua runtime:
//
//	state, err := lua.NewState(lua.WithPrint(func(msg string) {
//	    log.Debug(msg)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	if err := state.DoFile("plugin.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// Only the base, table, string and math libraries are opened, and the
// loaders (dofile, loadfile, load, loadstring) are removed. There is no
// instruction or time limit: a script that never returns blocks its caller.
//
// # Errors
//
// Go code called from Lua reports failures with Raise. The error returned by
// State.Call then unwraps to the original Go error:
//
//	func addCommand(L *lua.LState) int {
//	    if !valid {
//	        lua.Raise(L, &ValidationError{...})
//	    }
//	    ...
//	}
//
//	_, err := state.Call("init")
//	var verr *ValidationError
//	errors.As(err, &verr) // true
//
// # Scope
//
// A Scope is a flag shared by every handle built for one call. Handles call
// Scope.Check before touching host state; after Close, Check raises
// ErrScopeClosed in the script instead.
//
// # Bridge
//
// The Bridge provides bidirectional type conversion:
//
//	bridge := lua.NewBridge(state.LuaState())
//	luaVal := bridge.ToLuaValue(map[string]any{"code": "Char", "char": "a"})
//	goVal := bridge.ToGoValue(luaVal)
package lua
