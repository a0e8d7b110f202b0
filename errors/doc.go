/*
Package errors implements the error taxonomy shared by the treasury packages.

Every rejection returned by an operation wraps one of the registered root
errors. Root errors carry a numeric code so that a client can tell the kind of
failure apart without parsing the message. Extensions that need a kind of
their own call Register(code, description) once, at package initialization.

Wrap the root error at the point of failure to attach a stacktrace:

	return errors.Wrapf(errors.ErrNotFound, "proposal %d", id)

Test for a kind with Is, which follows the Cause chain:

	if errors.ErrNotFound.Is(err) { ... }

Formatting a wrapped error with %+v prints the full stacktrace of the
innermost wrap.
*/
package errors
