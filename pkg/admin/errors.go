package admin

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an administrative operation failure.
type Code string

const (
	CodeUnauthenticated  Code = "unauthenticated"
	CodePermissionDenied Code = "permission-denied"
	CodeInvalidArgument  Code = "invalid-argument"
	CodeNotFound         Code = "not-found"
	CodeInternal         Code = "internal"
)

// HTTPStatus maps the code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CodeError is an operation failure carrying its taxonomy code. Failures are
// terminal per call; nothing is retried.
type CodeError struct {
	Code    Code
	Message string
	Err     error
}

func (e *CodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a call with no caller identity.
func Unauthenticated() error {
	return &CodeError{Code: CodeUnauthenticated, Message: "authentication required"}
}

// PermissionDenied reports a caller that may not perform the operation.
func PermissionDenied(message string) error {
	return &CodeError{Code: CodePermissionDenied, Message: message}
}

// InvalidArgument reports malformed input.
func InvalidArgument(message string) error {
	return &CodeError{Code: CodeInvalidArgument, Message: message}
}

// NotFound reports a target that does not exist.
func NotFound(message string) error {
	return &CodeError{Code: CodeNotFound, Message: message}
}

// Internal wraps an unexpected backend failure, keeping the underlying
// message for diagnostics.
func Internal(message string, err error) error {
	return &CodeError{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the taxonomy code from an error. Errors without a code are
// classified internal.
func CodeOf(err error) Code {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from an error.
func MessageOf(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
