// Package key provides the key event model shared by the editor and its
// plugins.
//
// An Event is a {code, modifiers, kind, state} record:
//
//   - Code: a symbolic key name ("Up", "Enter", "F5", ...) or CodeChar with
//     the literal character carried in Event.Char
//   - Modifier: bitmask of Shift, Control, Alt, Super, Hyper and Meta
//   - Kind: Press, Release or Repeat
//   - State: bitmask of Keypad, CapsLock and NumLock
//
// Events are plain comparable values, so two bindings are equal exactly when
// all four parts (and the character) are equal.
//
// # Key Specifications
//
// Settings files may describe a binding either as a table
// ({code = "Char", char = "s", modifiers = 2}) or as a specification string:
//
//   - Simple keys: "a", "A", "1", "Enter", "Esc"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<CR>", "<Esc>"
package key
