// Package command holds the ordered set of commands a plugin exports to the
// editor's command surface.
package command

import "slices"

// Info describes one exported command. Command is both the identifier shown
// to the user and the name of the global plugin function that runs it.
type Info struct {
	Command     string
	Description string
}

// Registry is an ordered collection of Info with unique identifiers.
//
// Add is an upsert: an existing identifier keeps its position and only its
// description changes; a new identifier is appended. Remove deletes the
// entry, so a later Add of the same identifier appends it at the end.
//
// Registry is not safe for concurrent use. A plugin owns its registry and
// lends it to one call at a time.
type Registry struct {
	commands []Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add inserts or updates a command.
func (r *Registry) Add(id, description string) {
	if i := r.index(id); i >= 0 {
		r.commands[i].Description = description
		return
	}
	r.commands = append(r.commands, Info{Command: id, Description: description})
}

// Remove deletes a command. It returns false if the identifier was not present.
func (r *Registry) Remove(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.commands = slices.Delete(r.commands, i, i+1)
	return true
}

// Get returns the command with the given identifier.
func (r *Registry) Get(id string) (Info, bool) {
	if i := r.index(id); i >= 0 {
		return r.commands[i], true
	}
	return Info{}, false
}

// Has reports whether the identifier is registered.
func (r *Registry) Has(id string) bool {
	return r.index(id) >= 0
}

// Commands returns a copy of the commands in insertion order.
func (r *Registry) Commands() []Info {
	return slices.Clone(r.commands)
}

// Len returns the number of commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.commands, func(c Info) bool { return c.Command == id })
}
