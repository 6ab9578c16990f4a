package plugin

import (
	"strings"

	"github.com/dshills/hexpatch/internal/input/key"
	"github.com/dshills/hexpatch/internal/input/mouse"
)

// Events is a set of event kinds a plugin handles.
type Events uint8

// Event kinds.
const (
	OnOpen Events = 1 << iota
	OnEdit
	OnSave
	OnKey
	OnMouse

	// NoEvents is the empty set.
	NoEvents Events = 0
	// AllEvents contains every event kind.
	AllEvents = OnOpen | OnEdit | OnSave | OnKey | OnMouse
)

var handlerNames = []struct {
	kind Events
	name string
}{
	{OnOpen, "on_open"},
	{OnEdit, "on_edit"},
	{OnSave, "on_save"},
	{OnKey, "on_key"},
	{OnMouse, "on_mouse"},
}

// Has reports whether every kind in other is in e.
func (e Events) Has(other Events) bool {
	return e&other == other
}

// HandlerName returns the Lua function name handling a single event kind,
// or "" if e is not exactly one kind.
func (e Events) HandlerName() string {
	for _, h := range handlerNames {
		if h.kind == e {
			return h.name
		}
	}
	return ""
}

// Names returns the handler names in e, in declaration order.
func (e Events) Names() []string {
	var names []string
	for _, h := range handlerNames {
		if e.Has(h.kind) {
			names = append(names, h.name)
		}
	}
	return names
}

// String returns the handler names joined with "|", or "none".
func (e Events) String() string {
	if e == NoEvents {
		return "none"
	}
	return strings.Join(e.Names(), "|")
}

// Event is something the editor reports to plugins. Exactly one event kind
// is carried per value.
type Event interface {
	Kind() Events
}

// OpenEvent is raised after a file is opened.
type OpenEvent struct{}

// Kind returns OnOpen.
func (OpenEvent) Kind() Events { return OnOpen }

// EditEvent is raised when bytes are written at the cursor. The handler
// receives NewBytes as a mutable buffer; its writes are visible through
// the pointer once the dispatch returns.
type EditEvent struct {
	NewBytes *[]byte
}

// Kind returns OnEdit.
func (EditEvent) Kind() Events { return OnEdit }

// SaveEvent is raised before the file is written.
type SaveEvent struct{}

// Kind returns OnSave.
func (SaveEvent) Kind() Events { return OnSave }

// KeyEvent carries a key press.
type KeyEvent struct {
	Key key.Event
}

// Kind returns OnKey.
func (KeyEvent) Kind() Events { return OnKey }

// MouseEvent carries a mouse action.
type MouseEvent struct {
	Mouse mouse.Event
}

// Kind returns OnMouse.
func (MouseEvent) Kind() Events { return OnMouse }
