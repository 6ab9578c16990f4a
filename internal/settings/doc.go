// Package settings holds the editor's user-tunable state: key bindings,
// color styles and an open-ended custom store that plugins may read and
// write through context.settings.
//
// Key bindings are key.Event values. Color styles are Style values whose
// foreground and background are each either unset, a 24-bit RGB literal,
// a named palette color or a palette index. Custom entries are Value, a
// closed tagged variant over string, integer, float, boolean, style and
// key binding.
//
// Settings files are TOML, YAML or JSON, chosen by extension:
//
//	[key]
//	save = "Ctrl+s"
//	jump = { code = "Char", char = "g", modifiers = 0 }
//
//	[color]
//	address = { fg = "#ffaa00" }
//	status = { fg = "Black", bg = 7 }
//
//	[custom]
//	greeting = "hello"
package settings
