package settings

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrUnknownSetting indicates a key or color name that does not exist.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidColor indicates a color literal that cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidValue indicates a custom value of an unsupported type.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrUnsupportedFormat indicates a settings file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported settings format")
)

// ParseError represents an error while reading a settings file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Field is the dotted setting name, if the error is about one entry.
	Field string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("settings error in %s at %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("settings error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
