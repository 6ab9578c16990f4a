package app

import (
	"errors"
	"strings"
)

var (
	// ErrQuit is returned by HandleKey when a quit action was triggered.
	ErrQuit = errors.New("quit")

	// ErrNoFilePath is returned when saving a scratch document.
	ErrNoFilePath = errors.New("document has no path")

	// ErrReadOnly is returned when saving a document opened read-only.
	ErrReadOnly = errors.New("document is read-only")

	// ErrClosed is returned by operations on a closed Application.
	ErrClosed = errors.New("application is closed")
)

// OperationError wraps a failed document operation such as "open" or
// "save" together with the path it was applied to.
type OperationError struct {
	Op     string
	Target string
	Err    error
}

// NewOperationError returns an OperationError for op on target.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		b.WriteByte(' ')
		b.WriteString(e.Target)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError reports which part of the application failed to start.
type ComponentError struct {
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err == nil:
		return e.Component
	default:
		return e.Component + ": " + e.Err.Error()
	}
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
