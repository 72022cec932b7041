/*
Package errors implements the error handling used by all wallet packages.

Every error returned by the wallet wraps one root error. Root errors are
declared with Register and carry a unique code, so that a caller can classify
any returned error with Is or Code. Generic root errors live in this package,
x/highload registers the protocol rejections.

Wrap an error at the place where it is created. The innermost Wrap attaches a
stack trace, later wraps only add a description:

	return errors.Wrapf(errors.ErrInvalidInput, "limit %d", limit)

Validation of several fields can collect all problems at once with
AppendField, and FieldErrors finds the errors of a single field again.

Formatting an error:
	%s is the error message
	%v appends the [file:line] where the error was created
	%+v prints the full stack trace
*/
package errors
