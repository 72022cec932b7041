package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil error is provided, nil is returned.
// If only one non-nil error is provided, it is returned unchanged.
// Otherwise an instance that represents all given errors is returned. Use
// the Is method of a root error to test whether any of the clubbed errors is
// of a given kind.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is a flat list of errors. It does not support nesting, Append
// flattens any nested instance.
type multiErr []error

func (m multiErr) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}

	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Unpack implements unpacker interface.
func (m multiErr) Unpack() []error {
	return []error(m)
}

// unpacker is implemented by errors that represent more than one error
// instance.
type unpacker interface {
	Unpack() []error
}
