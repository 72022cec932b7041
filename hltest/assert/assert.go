/*
Package assert provides the small set of test helpers used across the wallet
packages. Every helper stops the test on the first failure.
*/
package assert

import (
	"bytes"
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/iov-one/hlwallet/errors"
)

// Tester is the part of testing.TB the helpers need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil. Typed nil pointers, maps and
// slices count as nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		return
	}
	// %+v prints the stack trace of wrapped errors.
	t.Fatalf("want nil, got %+v", value)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails the test if want and got are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Bytes fails the test if two byte slices differ. Both values are printed
// hex encoded together with the offset of the first difference, which is
// easier to read than Equal output for binary layouts.
func Bytes(t Tester, want, got []byte) {
	t.Helper()
	if bytes.Equal(want, got) {
		return
	}
	offset := 0
	for offset < len(want) && offset < len(got) && want[offset] == got[offset] {
		offset++
	}
	t.Fatalf("bytes differ at offset %d\nwant %s\n got %s",
		offset, hex.EncodeToString(want), hex.EncodeToString(got))
}

// Panics fails the test if calling fn does not panic.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	fn()
}

// FieldError checks the errors collected for a single field name. Passing a
// nil want asserts that the field has no error.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	if want == nil {
		if len(errs) == 0 {
			return
		}
		for i, e := range errs {
			t.Logf("\t%s error %d: %q", fieldName, i+1, e)
		}
		t.Fatalf("want no %s error, got %d", fieldName, len(errs))
	}

	if len(errs) == 0 {
		t.Fatalf("no %s error found", fieldName)
	}
	for _, e := range errs {
		if want.Is(e) {
			if len(errs) > 1 {
				t.Errorf("want one %s error, got %d", fieldName, len(errs))
			}
			return
		}
	}
	for i, e := range errs {
		t.Logf("\t%s error %d: %q", fieldName, i+1, e)
	}
	t.Fatalf("%s error %q not found", fieldName, want)
}

// IsErr fails the test if got does not match want. Matching is done with the
// Is method when want provides one.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if w, ok := want.(interface{ Is(error) bool }); ok && w.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
