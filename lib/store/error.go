package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

// RetCode identifies the kind of failure reported by an *Error.
type RetCode uint16

const (
	RetCConnection RetCode = 2001 // role connection could not be derived after discovery
	RetCSentinel   RetCode = 2002 // monitor unreachable or misconfigured
	RetCInit       RetCode = 2003 // operation against an absent role connection
	RetCDecode     RetCode = 2004 // stored value could not be decoded
)

// String returns the wire name of the code, e.g. REDIS_2003.
func (c RetCode) String() string {
	return fmt.Sprintf("REDIS_%d", uint16(c))
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned for all failures raised by this module
// itself. Errors returned by the store engine (e.g. WRONGTYPE) are passed
// through unchanged and are not of this type.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying cause, may be nil.
}

// Sentinel values to be used with errors.Is. Only the code is compared.
var (
	ErrConnection = &Error{Code: RetCConnection}
	ErrSentinel   = &Error{Code: RetCSentinel}
	ErrInit       = &Error{Code: RetCInit}
	ErrDecode     = &Error{Code: RetCDecode}
)

// Error implements the error interface.
func (e *Error) Error() string {
	kind := ""
	switch e.Code {
	case RetCConnection:
		kind = "ConnectionError"
	case RetCSentinel:
		kind = "SentinelError"
	case RetCInit:
		kind = "InitError"
	case RetCDecode:
		kind = "DecodeError"
	default:
		kind = "Error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (code %s): %s: %v", kind, e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s (code %s): %s", kind, e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message wrapping err.
func WrapError(code RetCode, err error, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}
