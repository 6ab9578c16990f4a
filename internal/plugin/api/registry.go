package api

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Module is one userdata type of the bridge. Register installs its
// metatable into a Lua state.
type Module interface {
	// Name returns the metatable name (e.g., "hexpatch.context").
	Name() string

	// Register installs the module's metatable.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]bool
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]bool),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names[mod.Name()] {
		return fmt.Errorf("module %q already registered", mod.Name())
	}

	r.names[mod.Name()] = true
	r.modules = append(r.modules, mod)
	return nil
}

// List returns the registered module names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.modules))
	for i, mod := range r.modules {
		names[i] = mod.Name()
	}
	return names
}

// InjectAll registers all modules into the Lua state.
func (r *Registry) InjectAll(L *lua.LState) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, mod := range r.modules {
		if err := mod.Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}
	return nil
}

// DefaultRegistry creates a registry with every bridge module registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, mod := range []Module{
		&ContextModule{},
		NewBytesModule(),
		&SettingsModule{},
		&HeaderModule{},
	} {
		// Names are distinct constants; Register cannot fail here.
		_ = r.Register(mod)
	}
	return r
}

// argBase returns the stack index of the first argument, skipping self
// when a function stored on a handle is called with ':'.
func argBase(L *lua.LState, self lua.LValue) int {
	if L.GetTop() >= 1 && L.Get(1) == self {
		return 2
	}
	return 1
}

// newHandle builds a userdata with the named metatable.
func newHandle(L *lua.LState, typeName string, value any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}
