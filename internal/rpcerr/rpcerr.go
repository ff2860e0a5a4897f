// Package rpcerr defines the error kinds surfaced to RPC callers.
//
// Kinds reuse gRPC status codes so the same classification can be rendered
// as an HTTP response or converted with status.FromError.
package rpcerr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is a classified error carrying a caller-facing message.
type Error struct {
	Code    codes.Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GRPCStatus lets status.FromError recover the classification.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

func newError(code codes.Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// InvalidArgument reports a malformed or missing request field.
func InvalidArgument(format string, args ...any) *Error {
	return newError(codes.InvalidArgument, nil, format, args...)
}

// NotFound reports an unknown or expired resource.
func NotFound(format string, args ...any) *Error {
	return newError(codes.NotFound, nil, format, args...)
}

// Unauthenticated reports a credential rejected by the provider or directory.
func Unauthenticated(err error, format string, args ...any) *Error {
	return newError(codes.Unauthenticated, err, format, args...)
}

// Internal reports any unclassified downstream failure.
func Internal(err error, format string, args ...any) *Error {
	return newError(codes.Internal, err, format, args...)
}

// Capacity reports that a bounded retry budget was exhausted.
func Capacity(format string, args ...any) *Error {
	return newError(codes.ResourceExhausted, nil, format, args...)
}

// CodeOf returns the classification of err. Unclassified errors are Internal.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return codes.Internal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Wrap classifies err as Internal unless it already carries a kind.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(err, format, args...)
}

// HTTPStatus maps an error kind to the HTTP status used by the JSON surface.
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns the wire name of a code, e.g. "NOT_FOUND".
func Kind(code codes.Code) string {
	switch code {
	case codes.InvalidArgument:
		return "INVALID_ARGUMENT"
	case codes.NotFound:
		return "NOT_FOUND"
	case codes.Unauthenticated:
		return "UNAUTHENTICATED"
	case codes.ResourceExhausted:
		return "CAPACITY"
	case codes.OK:
		return "OK"
	default:
		return "INTERNAL"
	}
}
