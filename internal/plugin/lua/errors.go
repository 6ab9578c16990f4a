package lua

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when calling a global that is not a function.
	ErrNotFunction = errors.New("not a function")

	// ErrScopeClosed is raised when a handle is used after its call returned.
	ErrScopeClosed = errors.New("context used outside of the call it was passed to")
)

const errorTypeName = "hexpatch.error"

// Raise aborts the running Lua function with err. The error value seen by
// Lua is a userdata whose tostring is err.Error(); Go callers of the
// failing call get an error that unwraps to err.
func Raise(L *lua.LState, err error) {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, errorMetatable(L))
	L.Error(ud, 1)
}

func errorMetatable(L *lua.LState) *lua.LTable {
	mt := L.NewTypeMetatable(errorTypeName)
	if mt.RawGetString("__tostring") == lua.LNil {
		L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
			if err, ok := L.CheckUserData(1).Value.(error); ok {
				L.Push(lua.LString(err.Error()))
			} else {
				L.Push(lua.LString("error"))
			}
			return 1
		}))
	}
	return mt
}

// ScriptError is a failure raised while running Lua code.
type ScriptError struct {
	// Message is the Lua error message, or the carried Go error's message.
	Message string
	// Traceback is the Lua stack trace, if available.
	Traceback string
	// Cause is the Go error passed to Raise, if any.
	Cause error

	api *lua.ApiError
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return e.Message
}

// Unwrap returns the carried Go error and the underlying gopher-lua error.
func (e *ScriptError) Unwrap() []error {
	var errs []error
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.api != nil {
		errs = append(errs, e.api)
	}
	return errs
}

// wrapError converts a gopher-lua error into a *ScriptError.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var api *lua.ApiError
	if !errors.As(err, &api) {
		return err
	}

	se := &ScriptError{
		Traceback: api.StackTrace,
		api:       api,
	}
	if ud, ok := api.Object.(*lua.LUserData); ok {
		if cause, ok := ud.Value.(error); ok {
			se.Cause = cause
		}
	}
	switch {
	case se.Cause != nil:
		se.Message = se.Cause.Error()
	case api.Object != nil:
		se.Message = api.Object.String()
	default:
		se.Message = strings.TrimSpace(api.Error())
	}
	return se
}
