package api

import (
	"errors"
	"fmt"
)

// Errors raised into Lua by the bridge.
var (
	// ErrReadOnly is raised when assigning to a read-only handle.
	ErrReadOnly = errors.New("read-only")

	// ErrIndexOutOfRange is raised for byte indices outside the buffer.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidByte is raised when storing something that is not 0-255.
	ErrInvalidByte = errors.New("byte value must be an integer in [0, 255]")

	// ErrUnknownField is raised when assigning an unknown settings field.
	ErrUnknownField = errors.New("unknown field")
)

// CommandValidationError is raised by add_command when no global function
// with the command's name exists.
type CommandValidationError struct {
	Command string
}

// Error implements the error interface.
func (e *CommandValidationError) Error() string {
	return fmt.Sprintf("cannot add command %q: no global function named %q", e.Command, e.Command)
}
