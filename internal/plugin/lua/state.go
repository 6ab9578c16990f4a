package lua

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// State wraps gopher-lua with additional features for plugin execution.
//
// gopher-lua's LState is not goroutine-safe. The mutex protects against
// concurrent access from Go code; Go functions called back from Lua must use
// the LState they are given rather than State methods.
type State struct {
	L *lua.LState

	mu sync.Mutex

	print  func(string)
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithPrint routes the Lua print function to fn. Without it print output is
// discarded, since stdout belongs to the terminal UI.
func WithPrint(fn func(msg string)) StateOption {
	return func(s *State) {
		s.print = fn
	}
}

// NewState creates a new restricted Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})
	state.L = L

	openSafeLibraries(L)
	installSandbox(L, state.print)

	return state, nil
}

// DoString executes a Lua string.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// Compile parses and compiles source without running it. The result can be
// run in any State with DoProto.
func Compile(name, source string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return proto, nil
}

// DoProto executes a compiled chunk.
func (s *State) DoProto(proto *lua.FunctionProto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		s.L.Push(s.L.NewFunctionFromProto(proto))
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return wrapError(fn())
}

// HasFunction reports whether the global name holds a function.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
// Errors raised by the script are returned as *ScriptError.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q: %w (got %s)", fn, ErrNotFunction, fnVal.Type())
	}

	// Record stack top before pushing anything
	stackTop := s.L.GetTop()

	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	callErr := s.doWithRecovery(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if callErr != nil {
		s.L.SetTop(stackTop)
		return nil, callErr
	}

	// Collect return values (only the new values added after the call)
	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.SetGlobal(name, value)
}

// LuaState returns the underlying gopher-lua state.
//
// Direct access bypasses the mutex. Callers must not use it concurrently
// with State methods.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
