package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

// Codes used only by this package tests, far from the ones registered by
// the wallet packages.
var (
	errStaleQuery = Register(9001, "stale query")
	errBadSigner  = Register(9002, "bad signer")
)

func TestRejectionClassification(t *testing.T) {
	cases := map[string]struct {
		err     error
		code    uint32
		is      []*Error
		isNot   []*Error
		message string
	}{
		"protocol rejection": {
			err:     Wrapf(errStaleQuery, "deadline %d before %d", 100, 164),
			code:    9001,
			is:      []*Error{errStaleQuery},
			isNot:   []*Error{errBadSigner, ErrInvalidInput},
			message: "deadline 100 before 164: stale query",
		},
		"rejection wrapped by the caller": {
			err:     Wrap(Wrap(errBadSigner, "public key"), "batch 7"),
			code:    9002,
			is:      []*Error{errBadSigner},
			isNot:   []*Error{errStaleQuery},
			message: "batch 7: public key: bad signer",
		},
		"entry field": {
			err:     Wrap(Field("Entries.3.Amount", ErrOverflow, "above %d", 10), "validate"),
			code:    ErrOverflow.Code(),
			is:      []*Error{ErrOverflow},
			isNot:   []*Error{ErrInvalidInput},
			message: `validate: field "Entries.3.Amount": above 10: an operation cannot be completed due to value overflow`,
		},
		"store failure": {
			err:     Wrap(Wrap(ErrDatabase, "load state"), "cleanup"),
			code:    ErrDatabase.Code(),
			is:      []*Error{ErrDatabase},
			isNot:   []*Error{ErrNotFound, ErrIteratorDone},
			message: "cleanup: load state: database",
		},
		"foreign error has no root": {
			err:     Wrap(io.ErrUnexpectedEOF, "read ledger"),
			code:    1,
			isNot:   []*Error{ErrDatabase, ErrInvalidInput},
			message: "read ledger: unexpected EOF",
		},
		"several invalid fields": {
			err: Append(
				Field("Signature", ErrEmpty, ""),
				Field("Entries", ErrInvalidInput, "too many"),
			),
			code:  1,
			is:    []*Error{ErrEmpty, ErrInvalidInput},
			isNot: []*Error{ErrModel},
		},
		"accepted": {
			err:   nil,
			code:  0,
			isNot: []*Error{ErrEmpty, errStaleQuery},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.code {
				t.Fatalf("want code %d, got %d", tc.code, got)
			}
			for _, root := range tc.is {
				if !root.Is(tc.err) {
					t.Errorf("want %q to match %q", tc.err, root)
				}
			}
			for _, root := range tc.isNot {
				if root.Is(tc.err) {
					t.Errorf("want %q not to match %q", tc.err, root)
				}
			}
			if tc.message != "" && tc.err.Error() != tc.message {
				t.Fatalf("want message %q, got %q", tc.message, tc.err.Error())
			}
		})
	}
}

func TestNilRootMatchesOnlyNil(t *testing.T) {
	var none *Error
	if !none.Is(nil) {
		t.Fatal("nil must match nil")
	}
	if !none.Is((*wrappedError)(nil)) {
		t.Fatal("nil must match a typed nil")
	}
	if none.Is(errStaleQuery) {
		t.Fatal("nil must not match a root error")
	}
	if none.Is(Append(ErrEmpty, ErrModel)) {
		t.Fatal("nil must not match a multi error")
	}
	if got := Code((*wrappedError)(nil)); got != 0 {
		t.Fatalf("want code 0 for a typed nil, got %d", got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "no rejection"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Wrapf(nil, "query %d", 1); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestRegisterCodeTwice(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("panic expected")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "stale query") {
			t.Fatalf("want the registered description in %q", msg)
		}
	}()
	Register(errStaleQuery.Code(), "stale query again")
}

func TestRecover(t *testing.T) {
	accept := func(entries []uint32, i int) (amount uint32, err error) {
		defer Recover(&err)
		return entries[i], nil
	}

	amount, err := accept([]uint32{5, 7}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if amount != 7 {
		t.Fatalf("want 7, got %d", amount)
	}

	_, err = accept(nil, 3)
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Fatalf("want the panic value in %q", err)
	}
}

func TestWrappedErrorFormat(t *testing.T) {
	err := Wrap(Wrap(ErrNotFound, "wallet 42"), "transfer")
	if got, want := fmt.Sprintf("%s", err), "transfer: wallet 42: not found"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if got := fmt.Sprintf("%v", err); !strings.HasPrefix(got, "transfer: wallet 42: not found [") {
		t.Fatalf("want location appended, got %q", got)
	}
	if stackTrace(err) == nil {
		t.Fatal("want a stack trace")
	}
}
