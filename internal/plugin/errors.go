package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when a plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrNoEntryPoint is returned when a plugin directory has no script to run.
	ErrNoEntryPoint = errors.New("plugin has no entry point (init.lua or plugin.lua)")

	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")

	// ErrAlreadyLoaded is returned when a plugin with the same name is loaded.
	ErrAlreadyLoaded = errors.New("plugin is already loaded")

	// ErrHandlerMissing is returned when an event is dispatched to a plugin
	// that did not define the matching handler.
	ErrHandlerMissing = errors.New("plugin does not handle this event")

	// ErrCommandNotFound is returned when a command has no matching function.
	ErrCommandNotFound = errors.New("command not found")

	// ErrClosed is returned when using a plugin after Close.
	ErrClosed = errors.New("plugin is closed")
)

// LoadError reports a plugin whose source or init function failed. No
// plugin instance exists after a LoadError.
type LoadError struct {
	Name string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("plugin %q (%s) failed to load: %v", e.Name, e.Path, e.Err)
	}
	return fmt.Sprintf("plugin %q failed to load: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// RuntimeError reports a failure raised while a plugin handled an event or
// ran a command. Side effects made before the failure are kept.
type RuntimeError struct {
	Plugin string
	// Function is the Lua function that was called.
	Function string
	Err      error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Plugin, e.Function, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}
