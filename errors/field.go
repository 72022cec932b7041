package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name to err. It returns nil if err is nil.
//
// Use the Go name of the field, joined with dots for nested values and with
// the element index for sequences, for example PublicKey or Entries.3.Index.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField appends a field error to errs. Both values can be nil.
func AppendField(errs error, fieldName string, fieldErr error) error {
	return Append(errs, Field(fieldName, fieldErr, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.field
}

// FieldErrors collects all errors created for fieldName. When field errors
// with the same name are nested, only the outermost one is returned.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	for !isNilErr(err) {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(found, err)
		}
		// Unpack already covers all children.
		if u, ok := err.(unpacker); ok {
			for _, member := range u.Unpack() {
				found = append(found, FieldErrors(member, fieldName)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}
