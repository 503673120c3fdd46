package diag

import (
	"errors"
	"fmt"
)

// Error is a fatal, coded generation failure. Every stage of a run reports
// failures through it so the CLI can print a stable code.
type Error struct {
	Code    Code
	Message string
	// Path is the file the failure relates to, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("ERROR %s: %s", e.Code.ID(), e.Text())
}

// Text is the message with path and cause, without the code prefix.
func (e *Error) Text() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Title()
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Errorf builds an error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code and a path to an underlying error.
func Wrap(code Code, path string, err error) *Error {
	return &Error{
		Code: code,
		Path: path,
		Err:  err,
	}
}

// WithPath returns a copy of e that reports path.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// CodeOf returns the code carried by err or any error it wraps, UnknownCode
// otherwise.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return UnknownCode
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
