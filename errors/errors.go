package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors. Codes are part of the client protocol and must never be
// renumbered.
var (
	// ErrUnauthorized means a required signature is missing.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound means the entity does not exist, or no longer exists.
	ErrNotFound = Register(3, "not found")

	// ErrInvalidMsg means the transaction message cannot be handled.
	ErrInvalidMsg = Register(4, "invalid message")

	// ErrInvalidModel means a stored value does not pass validation.
	ErrInvalidModel = Register(5, "invalid model")

	// ErrDuplicate means the key or unique index is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman means a code path that must not be reached was taken.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty means a required value is missing.
	ErrEmpty = Register(9, "value is empty")

	// ErrInvalidState means stored data contradicts itself.
	ErrInvalidState = Register(10, "invalid state")

	// ErrInvalidType means a value is not of the expected type.
	ErrInvalidType = Register(11, "invalid type")

	// ErrInsufficientAmount means a balance cannot cover the operation.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	// ErrInvalidAmount means an amount is zero or otherwise unusable.
	ErrInvalidAmount = Register(13, "invalid amount")

	// ErrInvalidInput means malformed input.
	ErrInvalidInput = Register(14, "invalid input")

	// ErrOverflow means a numeric result does not fit its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase means the underlying storage failed.
	ErrDatabase = Register(17, "database")

	// ErrIteratorDone is returned by Next once an iterator is exhausted.
	ErrIteratorDone = Register(18, "iterator done")

	// ErrDerivation means no salt produced a valid derived address.
	ErrDerivation = Register(19, "cannot derive address")

	// ErrPanic marks a recovered panic. Its details are never sent to a
	// client outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// usedCodes holds every registered root error by code. Code 1 is kept for
// errors without a code.
var usedCodes = map[uint32]*Error{
	1: nil,
}

// Register declares a new root error. It panics if code is taken, so call
// it only from package level variable declarations.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode is the code sent to the client.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New wraps this root error with description.
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Is returns true if err is this root error or wraps it. A nil kind only
// matches a nil error.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return err == nil || reflect.ValueOf(err).IsNil()
	}
	for err != nil {
		if err == kind {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds description to err. The innermost wrap records a stack trace.
// Wrapping nil returns nil.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the whole chain. With %+v the stack trace of the innermost
// wrap is included.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic stored in err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found in the chain of err.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}
