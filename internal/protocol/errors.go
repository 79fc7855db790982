package protocol

import (
	"errors"
	"fmt"
)

// Code classifies a bridge failure reported back to script.
type Code string

const (
	CodeMissingData      Code = "MissingData"
	CodeInvalidPayload   Code = "InvalidPayload"
	CodeUnknownAction    Code = "UnknownAction"
	CodeNativeCallFailed Code = "NativeCallFailed"
	CodeHandleNotFound   Code = "HandleNotFound"
)

// Error is the structured failure carried across the bridge. Domain and
// Action are filled in by the router when the handler left them empty.
type Error struct {
	Code    Code
	Domain  Domain
	Action  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := string(e.Code)
	switch {
	case e.Domain != "" && e.Action != "":
		prefix = fmt.Sprintf("%s %s.%s", e.Code, e.Domain, e.Action)
	case e.Domain != "":
		prefix = fmt.Sprintf("%s %s", e.Code, e.Domain)
	case e.Action != "":
		prefix = fmt.Sprintf("%s %s", e.Code, e.Action)
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error with the same code, so callers can compare against
// the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil {
		return false
	}
	return other.Code == e.Code && other.Message == "" && other.Err == nil
}

var (
	ErrMissingData      = &Error{Code: CodeMissingData}
	ErrInvalidPayload   = &Error{Code: CodeInvalidPayload}
	ErrUnknownAction    = &Error{Code: CodeUnknownAction}
	ErrNativeCallFailed = &Error{Code: CodeNativeCallFailed}
	ErrHandleNotFound   = &Error{Code: CodeHandleNotFound}
)

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying error.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HandleNotFound reports an operation on an unknown or evicted id.
func HandleNotFound(domain Domain, id string) *Error {
	return &Error{Code: CodeHandleNotFound, Domain: domain, Message: fmt.Sprintf("no %s with id %q", domain, id)}
}

// CodeOf extracts the bridge code from err. Errors that did not originate in
// the bridge are reported as native call failures.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeNativeCallFailed
}

// AsError normalises err into an *Error annotated with domain/action.
func AsError(err error, domain Domain, action string) *Error {
	var be *Error
	if errors.As(err, &be) {
		out := *be
		if out.Domain == "" {
			out.Domain = domain
		}
		if out.Action == "" {
			out.Action = action
		}
		return &out
	}
	return &Error{Code: CodeNativeCallFailed, Domain: domain, Action: action, Err: err}
}
