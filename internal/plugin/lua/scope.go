package lua

import lua "github.com/yuin/gopher-lua"

// Scope bounds the lifetime of the handles passed into one Lua call.
// It is not safe for concurrent use; a Scope lives on the goroutine that
// drives the call.
type Scope struct {
	closed bool
}

// NewScope returns an open scope.
func NewScope() *Scope {
	return &Scope{}
}

// Close invalidates every handle that checks this scope.
func (s *Scope) Close() {
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	return s.closed
}

// Check raises ErrScopeClosed in L if the scope is closed.
func (s *Scope) Check(L *lua.LState) {
	if s.closed {
		Raise(L, ErrScopeClosed)
	}
}
