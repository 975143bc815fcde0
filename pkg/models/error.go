package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	BadRequestError    ErrorCode = "BadRequest"
	InternalError      ErrorCode = "InternalError"
	NotFoundError      ErrorCode = "NotFound"
	ServiceUnavailable ErrorCode = "ServiceUnavailable"
	ConfigurationError ErrorCode = "ConfigurationError"
	DatastoreFailure   ErrorCode = "DatastoreFailure"
	NetworkFailure     ErrorCode = "NetworkFailure"
	MalformedIntent    ErrorCode = "MalformedIntent"
)

type HasHint interface {
	// Hint A human-readable string that advises the user on how they might solve the error.
	Hint() string
}

type HasCode interface {
	Code() ErrorCode
}

// HasHTTPStatusCode is an interface that defines a method for retrieving
// an HTTP status code associated with an error.
type HasHTTPStatusCode interface {
	HTTPStatusCode() int
}

// BaseError is a custom error type that carries a code, the component that
// raised it, a hint for the user and optionally the error it wraps.
type BaseError struct {
	message        string
	hint           string
	component      string
	httpStatusCode int
	details        map[string]string
	code           ErrorCode
	cause          error
}

// IsBaseError is a helper function that checks if an error is a BaseError.
func IsBaseError(err error) bool {
	var baseError *BaseError
	return errors.As(err, &baseError)
}

// DefaultComponent is reported by errors that never set a component.
const DefaultComponent = "DSX"

// NewBaseError creates a new BaseError with only the message field set.
func NewBaseError(format string, a ...any) *BaseError {
	return &BaseError{
		component: DefaultComponent,
		message:   fmt.Sprintf(format, a...),
	}
}

// WrapBaseError creates a BaseError whose message is prefixed to the cause.
func WrapBaseError(cause error, format string, a ...any) *BaseError {
	e := NewBaseError(format, a...)
	e.message = e.message + ": " + cause.Error()
	e.cause = cause
	return e
}

func (e *BaseError) WithHint(hint string) *BaseError {
	e.hint = hint
	return e
}

func (e *BaseError) WithDetails(details map[string]string) *BaseError {
	e.details = details
	return e
}

func (e *BaseError) WithCode(code ErrorCode) *BaseError {
	e.code = code
	return e
}

// WithHTTPStatusCode overrides the status code otherwise inferred from the error code.
func (e *BaseError) WithHTTPStatusCode(statusCode int) *BaseError {
	e.httpStatusCode = statusCode
	return e
}

func (e *BaseError) WithComponent(component string) *BaseError {
	e.component = component
	return e
}

func (e *BaseError) Error() string {
	return e.message
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

func (e *BaseError) Hint() string {
	return e.hint
}

func (e *BaseError) Details() map[string]string {
	return e.details
}

// Code returns a unique code to identify the error
func (e *BaseError) Code() ErrorCode {
	return e.code
}

func (e *BaseError) Component() string {
	return e.component
}

// HTTPStatusCode returns the explicit status code if one was set, otherwise
// the one inferred from the error code.
func (e *BaseError) HTTPStatusCode() int {
	if e.httpStatusCode != 0 {
		return e.httpStatusCode
	}
	return inferHTTPStatusCode(e.code)
}

func inferHTTPStatusCode(code ErrorCode) int {
	switch code {
	case BadRequestError, MalformedIntent:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case ServiceUnavailable, DatastoreFailure, NetworkFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func IsErrorWithCode(err error, code ErrorCode) bool {
	var baseErr *BaseError
	if errors.As(err, &baseErr) {
		return baseErr.Code() == code
	}
	return false
}

// NewErrMalformedIntent is returned for intents that cannot reach the store,
// such as a create without a key.
func NewErrMalformedIntent(format string, a ...any) *BaseError {
	return NewBaseError(format, a...).
		WithCode(MalformedIntent).
		WithComponent("SyncEngine").
		WithHint(fmt.Sprintf("every create, update and delete must carry a %q field", KeyField))
}

// IsErrMalformedIntent reports whether err was raised for a malformed intent.
func IsErrMalformedIntent(err error) bool {
	return IsErrorWithCode(err, MalformedIntent)
}
