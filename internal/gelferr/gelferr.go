// Package gelferr defines the error kinds that flow through the ingestion
// pipeline, following the causer/stackTracer pattern used throughout the
// rest of this codebase for diagnostic logging.
package gelferr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error for logging and propagation decisions: startup
// kinds are fatal, per-item kinds are contained and logged.
type Kind string

const (
	Socket    Kind = "socket"
	Format    Kind = "format"
	Decode    Kind = "decode"
	Parse     Kind = "parse"
	Mailbox   Kind = "mailbox"
	Transport Kind = "transport"
	Config    Kind = "config"
)

// Error wraps an underlying cause with a Kind and carries a stack trace
// captured at construction time via github.com/pkg/errors.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Cause() error { return e.cause }

func (e *Error) StackTrace() errors.StackTrace {
	if st, ok := e.cause.(interface{ StackTrace() errors.StackTrace }); ok {
		return st.StackTrace()
	}
	return nil
}

func wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: errors.WithStack(cause)}
}

func wrapf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

func SocketErr(cause error) *Error { return wrap(Socket, cause) }

func FormatErr(format string, args ...interface{}) *Error { return wrapf(Format, format, args...) }

func DecodeErr(cause error) *Error { return wrap(Decode, cause) }

func MissingField(name string) *Error {
	return wrapf(Parse, "missing field %q", name)
}

func InvalidLevel(raw interface{}) *Error {
	return wrapf(Parse, "invalid level %v", raw)
}

func InvalidTimestamp(raw interface{}) *Error {
	return wrapf(Parse, "invalid timestamp %v", raw)
}

func ParseErr(cause error) *Error { return wrap(Parse, cause) }

func MailboxErr(cause error) *Error { return wrap(Mailbox, cause) }

func TransportErr(cause error) *Error { return wrap(Transport, cause) }

func ConfigErr(cause error) *Error { return wrap(Config, cause) }

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
