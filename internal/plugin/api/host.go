package api

import (
	"github.com/dshills/hexpatch/internal/header"
	"github.com/dshills/hexpatch/internal/notify"
	"github.com/dshills/hexpatch/internal/plugin/command"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
	"github.com/dshills/hexpatch/internal/settings"
)

// Host is the editor state a plugin call may read and change. Data and
// Settings are shared with the editor: writes made by the plugin are visible
// to the editor as soon as the call returns.
type Host struct {
	Data     *[]byte
	Offset   int
	Settings *settings.Settings
	Header   header.View
	Log      *notify.Sink
}

// Normalize fills missing parts with empty defaults so a partial Host can
// still be handed to a plugin. A zero Header becomes header.Default.
func (h *Host) Normalize() {
	if h.Data == nil {
		h.Data = new([]byte)
	}
	if h.Settings == nil {
		h.Settings = settings.Default()
	}
	if h.Header == (header.View{}) {
		h.Header = header.Default
	}
	if h.Log == nil {
		h.Log = notify.NewSink()
	}
}

// Context is the state behind one context userdata.
type Context struct {
	Host     *Host
	Commands *command.Registry
	Scope    *plua.Scope
}
