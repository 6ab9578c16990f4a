// Package plugin runs hexpatch plugins: Lua scripts that react to editor
// events and export commands.
//
// # Quick Start
//
//	config := plugin.DefaultManagerConfig()
//	config.Logger = logger
//
//	mgr, err := plugin.NewManager(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	if err := mgr.LoadAll(host); err != nil {
//	    log.Printf("plugin discovery failed: %v", err)
//	}
//	mgr.Handle(plugin.OpenEvent{}, host)
//
// # Plugin Structure
//
// Plugins are single files or directories:
//
//	~/.config/hexpatch/plugins/nop.lua
//
//	~/.config/hexpatch/plugins/strings/
//	├── plugin.yaml      # Manifest (optional)
//	└── init.lua         # Entry point
//
// A directory without a manifest uses init.lua, then plugin.lua.
//
// # Manifest
//
//	name: strings
//	version: 1.0.0
//	description: List printable strings
//	main: init.lua
//
// plugin.json with the same fields is also accepted and preferred when both
// exist.
//
// # Lifecycle
//
// Loading runs the script's top level, then init(context) if defined. The
// handlers the script defines (on_open, on_edit, on_save, on_key, on_mouse)
// are recorded once at that point; functions defined later are not picked
// up until the plugin is reloaded. A plugin that fails to load is discarded
// whole, including any commands it registered.
//
// Every call receives a fresh context whose accessors stop working when the
// call returns. Changes a handler makes to the data, offset, settings or
// command list before it raises an error are kept.
//
// # Example Plugin
//
//	function init(context)
//	    context.add_command("nop", "Fill the byte under the cursor with NOP")
//	end
//
//	function nop(context)
//	    context.data:set(context.offset, 0x90)
//	    context.log(2, "patched " .. context.offset)
//	end
//
//	function on_key(key_event, context)
//	    if key_event.code == "Char" and key_event.char == "n" then
//	        nop(context)
//	    end
//	end
package plugin
