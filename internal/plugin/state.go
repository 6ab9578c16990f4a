package plugin

// State is the lifecycle state of a discovered plugin.
type State int

// Plugin states.
const (
	// StateUnloaded - discovered but not loaded.
	StateUnloaded State = iota

	// StateLoaded - loaded and receiving events.
	StateLoaded

	// StateError - discovery or loading failed; see PluginInfo.Error.
	StateError

	// StateClosed - unloaded by the manager.
	StateClosed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
