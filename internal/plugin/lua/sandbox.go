package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// removedGlobals can read or compile code from outside the plugin source.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Open base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package, channel, coroutine.
}

// installSandbox removes the loaders and routes print to fn.
func installSandbox(L *lua.LState, print func(string)) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		if print == nil {
			return 0
		}
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		print(strings.Join(parts, "\t"))
		return 0
	}))
}
