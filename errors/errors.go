package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all wallet packages. Protocol specific rejections are
// registered by x/highload.
var (
	// ErrNotFound is returned when requested data does not exist, for
	// example a wallet that was never deployed.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned for an internal message that cannot be handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned when a persisted record is not consistent.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when a unique record already exists.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman marks a code path that must never be reached.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a required value is missing.
	ErrEmpty = Register(9, "value is empty")

	// ErrInvalidState is returned when stored data contradicts itself.
	ErrInvalidState = Register(10, "invalid state")

	// ErrInvalidInput is the general input decoding and validation error.
	ErrInvalidInput = Register(14, "invalid input")

	// ErrOverflow is returned when a value does not fit its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase wraps failures of the underlying store.
	ErrDatabase = Register(17, "database")

	// ErrIteratorDone is returned by an iterator with no more elements.
	ErrIteratorDone = Register(18, "iterator done")

	// ErrPanic is the result of a recovered panic.
	ErrPanic = Register(111222, "panic")
)

// Register declares a new root error. Each code can be used only once,
// registering a code again panics. Call it from package level variable
// declarations only.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{code: code, desc: description}
	usedCodes[code] = err
	return err
}

// Code 1 is reserved for errors that do not wrap any root error.
var usedCodes = map[uint32]*Error{1: nil}

// Error is a root error. Every error returned by the wallet packages wraps
// exactly one root error so that callers can classify it with Is or Code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the unique code of this root error.
func (e Error) Code() uint32 {
	return e.code
}

// Is returns true if err is this root error or wraps it. A multi error
// matches when any of its members matches. A nil root error matches only
// nil errors.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, member := range u.Unpack() {
				if e.Is(member) {
					return true
				}
			}
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Code returns the code of the root error wrapped by err, 0 for nil and 1
// when no root error is wrapped.
func Code(err error) uint32 {
	for !isNilErr(err) {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		c, ok := err.(causer)
		if !ok {
			return 1
		}
		err = c.Cause()
	}
	return 0
}

// isNilErr also treats a typed nil implementation as nil.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Wrap adds a description to err. It returns nil if err is nil. A stack
// trace is attached at the innermost wrap only.
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

// Recover stops a panic and stores it as ErrPanic in err. It must be called
// directly by defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}
