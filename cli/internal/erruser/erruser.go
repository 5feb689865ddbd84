// Package erruser provides errors whose Error() is a plain user-facing
// sentence; the technical cause stays reachable through Unwrap() so the CLI
// can print it behind a "Details:" line.
package erruser

import (
	"errors"
	"fmt"
)

// Err pairs a user-facing message with an optional cause. Error() returns
// only Msg so the primary line never contains command lines, exit codes, or
// stderr dumps.
type Err struct {
	Msg string
	Err error
}

// Error returns the user-facing message only.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// Unwrap returns the underlying cause, or nil. Safe on a nil receiver.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an error with the given user-facing message. A non-nil err is
// kept as the cause and reachable via Unwrap; a nil err yields a plain error.
func New(msg string, err error) error {
	if err == nil {
		return errors.New(msg)
	}
	return &Err{Msg: msg, Err: err}
}

// Newf is New with a formatted message. The cause, when non-nil, is attached
// the same way as New; it is never interpolated into the message.
func Newf(err error, format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...), err)
}
