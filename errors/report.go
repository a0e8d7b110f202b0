package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessCode is the code of a nil error.
	SuccessCode uint32 = 0

	// InternalCode is the code of every error that does not wrap a
	// registered root error. Its message is not safe to show to a client.
	InternalCode uint32 = 1

	internalLog = "internal error"
)

// Report returns the code and the message that can be shown to the caller of
// a failed operation. An error without a registered root is reported as
// internal and, unless debug is set, its message is hidden. With debug the
// message carries the stack trace.
func Report(err error, debug bool) (uint32, string) {
	code := Code(err)
	switch {
	case code == SuccessCode:
		return code, ""
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == InternalCode:
		return code, internalLog
	default:
		return code, err.Error()
	}
}

type coder interface {
	Code() uint32
}

// Code returns the code of the first root error found in the Cause chain.
func Code(err error) uint32 {
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return InternalCode
		}
		err = c.Cause()
	}
	return SuccessCode
}

// errIsNil returns true if value represented by the given error is nil.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
