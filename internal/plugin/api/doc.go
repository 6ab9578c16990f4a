// Package api implements the capability bridge between the editor and Lua
// plugins.
//
// Every plugin call receives a context userdata built from a Host (the
// editor state the call may touch), the plugin's command registry and a
// lua.Scope. The scope is closed as soon as the call returns, so a plugin
// that stores context, context.data or any other handle in a global gets
// an error the next time it uses it.
//
// # Context
//
//	context.data              -- byte buffer handle (see below)
//	context.settings          -- settings handle (see below)
//	context.header            -- read-only {format, bitness, architecture, entry_point}
//	context.offset            -- cursor byte offset
//	context.log(level, msg)   -- 1 Debug, 2 Info, 3 Warning, 4 Error
//	context.add_command(id, description)
//	context.remove_command(id)
//
// add_command requires a global function named id to exist at the time of
// the call; otherwise it raises a *CommandValidationError and leaves the
// registry unchanged.
//
// # Bytes
//
// Indices are 0-based and bounds-checked; values are integers 0-255.
//
//	data[i], data[i] = v, #data
//	data:get(i), data:set(i, v), data:len()
//	data:push(v), data:pop(), data:to_string()
//
// # Settings
//
//	settings.key_<name>            -- {code, char, modifiers, kind, state}
//	settings.color_<name>          -- {fg, bg}; colors are "#rrggbb", a name, or a palette index
//	settings:get_custom(name)      -- value or nil
//	settings:set_custom(name, v)   -- nil removes the entry
//
// Reading key_ and color_ fields returns a copy; assign the table back to
// change the setting.
package api
